package commands

import (
	"context"
	"errors"
	"log"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/record"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/submitter"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
	"github.com/louisbranch/demonlist.space/internal/services/list/video"
)

// ProcessSubmission reconciles one submission into a record or rejects
// it. The submitter is resolved beforehand (SubmitterByIP) so the ban
// check runs before any other work. A verify-only submission reports
// the outcome without writing; its success result is a nil record.
type ProcessSubmission struct {
	Submission record.Submission
	Submitter  submitter.Submitter
	// Bounds carries the main and extended list sizes. The zero value
	// means the stock sizes.
	Bounds demon.Bounds
	// Videos validates video references. Nil means the stock allowlist.
	Videos video.Validator
}

// Name implements dispatch.Command.
func (c ProcessSubmission) Name() string {
	return "process_submission"
}

// Execute implements dispatch.Command.
func (c ProcessSubmission) Execute(ctx context.Context, rc reqctx.Context) (*record.Record, error) {
	if c.Submitter.Banned {
		return nil, apperrors.New(apperrors.CodeBannedFromSubmissions, "submitter is banned")
	}

	sub := c.Submission

	data, err := ResolveSubmissionData{PlayerName: sub.Player, DemonName: sub.Demon}.Execute(ctx, rc)
	if err != nil {
		return nil, err
	}

	if sub.Video != "" {
		videos := c.Videos
		if videos == nil {
			videos = video.Default()
		}
		canonical, err := videos.Validate(sub.Video)
		if err != nil {
			return nil, err
		}
		sub.Video = canonical
	}

	if data.Player.Banned {
		return nil, apperrors.New(apperrors.CodePlayerBanned, "player is banned from the list")
	}

	bounds := c.Bounds
	if bounds == (demon.Bounds{}) {
		bounds = demon.DefaultBounds()
	}
	if bounds.Legacy(data.Demon.Position) {
		return nil, apperrors.New(apperrors.CodeSubmitLegacy, "demon ranks on the legacy list")
	}
	if !bounds.OnMainList(data.Demon.Position) && sub.Progress != 100 {
		return nil, apperrors.New(apperrors.CodeNon100Extended, "extended list demons only accept 100% records")
	}
	if err := record.ValidateProgress(sub.Progress, data.Demon.Requirement); err != nil {
		return nil, err
	}

	store := rc.Store()

	existing, err := store.DuplicateRecord(ctx, data.Player.ID, data.Demon.Name, sub.Video)
	switch {
	case err == nil:
		if existing.Status == record.StatusRejected || existing.Progress >= sub.Progress {
			return nil, apperrors.WithMetadata(apperrors.CodeSubmissionExists, "an equivalent record already exists",
				map[string]string{"RecordID": itoa(existing.ID), "Status": string(existing.Status)})
		}
		if sub.VerifyOnly {
			return nil, nil
		}
		// The improved submission supersedes an unreviewed duplicate.
		// Approved rows stay behind for the audit trail.
		if existing.Status == record.StatusSubmitted {
			if err := store.DeleteRecord(ctx, existing.ID); err != nil {
				return nil, dbError(err)
			}
		}
	case errors.Is(err, storage.ErrNotFound):
		if sub.VerifyOnly {
			return nil, nil
		}
	default:
		return nil, dbError(err)
	}

	created, err := store.InsertRecord(ctx, record.Record{
		Progress:  sub.Progress,
		Video:     sub.Video,
		Status:    record.StatusSubmitted,
		Player:    data.Player,
		Submitter: c.Submitter.ID,
		Demon:     data.Demon.Name,
	})
	if err != nil {
		return nil, dbError(err)
	}

	log.Printf("submission accepted: record %d, %d%% by %q on %q", created.ID, created.Progress, data.Player.Name, data.Demon.Name)
	return &created, nil
}

var _ dispatch.Command[*record.Record] = ProcessSubmission{}
