package commands

import (
	"context"
	"errors"
	"strconv"

	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/player"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/submitter"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// SubmitterByIP resolves the submitter behind the calling address,
// creating one on first contact.
type SubmitterByIP struct{}

// Name implements dispatch.Command.
func (c SubmitterByIP) Name() string {
	return "submitter_by_ip"
}

// Execute implements dispatch.Command.
func (c SubmitterByIP) Execute(ctx context.Context, rc reqctx.Context) (submitter.Submitter, error) {
	store := rc.Store()
	ip := rc.IP()

	s, err := store.SubmitterByIP(ctx, ip)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return submitter.Submitter{}, dbError(err)
	}

	s, err = store.InsertSubmitter(ctx, ip)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Another worker vivified the same address first.
		s, err = store.SubmitterByIP(ctx, ip)
	}
	if err != nil {
		return submitter.Submitter{}, dbError(err)
	}
	return s, nil
}

// PlayerByName resolves a player, creating one when the name is unknown.
type PlayerByName struct {
	PlayerName string
}

// Name implements dispatch.Command.
func (c PlayerByName) Name() string {
	return "player_by_name"
}

// Execute implements dispatch.Command.
func (c PlayerByName) Execute(ctx context.Context, rc reqctx.Context) (player.Player, error) {
	return vivifyPlayer(ctx, rc.Store(), c.PlayerName)
}

// vivifyPlayer looks a player up by name and creates the row when none
// exists yet. Both resolution paths validate the name first.
func vivifyPlayer(ctx context.Context, store storage.Store, name string) (player.Player, error) {
	if err := player.ValidateName(name); err != nil {
		return player.Player{}, err
	}

	p, err := store.PlayerByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return player.Player{}, dbError(err)
	}

	p, err = store.InsertPlayer(ctx, name)
	if errors.Is(err, storage.ErrAlreadyExists) {
		p, err = store.PlayerByName(ctx, name)
	}
	if err != nil {
		return player.Player{}, dbError(err)
	}
	return p, nil
}

// DemonByName resolves a demon. Unknown names are a hard failure,
// demons are never created implicitly.
type DemonByName struct {
	DemonName string
}

// Name implements dispatch.Command.
func (c DemonByName) Name() string {
	return "demon_by_name"
}

// Execute implements dispatch.Command.
func (c DemonByName) Execute(ctx context.Context, rc reqctx.Context) (demon.Demon, error) {
	d, err := rc.Store().DemonByName(ctx, c.DemonName)
	if err != nil {
		return demon.Demon{}, notFound("demon", c.DemonName, err)
	}
	return d, nil
}

// SubmissionData pairs the resolved player and demon of a submission.
type SubmissionData struct {
	Player player.Player `json:"player"`
	Demon  demon.Demon   `json:"demon"`
}

// ResolveSubmissionData resolves a submission's player and demon names
// in one command.
type ResolveSubmissionData struct {
	PlayerName string
	DemonName  string
}

// Name implements dispatch.Command.
func (c ResolveSubmissionData) Name() string {
	return "resolve_submission_data"
}

// Execute implements dispatch.Command.
func (c ResolveSubmissionData) Execute(ctx context.Context, rc reqctx.Context) (SubmissionData, error) {
	p, err := PlayerByName{PlayerName: c.PlayerName}.Execute(ctx, rc)
	if err != nil {
		return SubmissionData{}, err
	}
	d, err := DemonByName{DemonName: c.DemonName}.Execute(ctx, rc)
	if err != nil {
		return SubmissionData{}, err
	}
	return SubmissionData{Player: p, Demon: d}, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

var (
	_ dispatch.Command[submitter.Submitter] = SubmitterByIP{}
	_ dispatch.Command[player.Player]       = PlayerByName{}
	_ dispatch.Command[demon.Demon]         = DemonByName{}
	_ dispatch.Command[SubmissionData]      = ResolveSubmissionData{}
)
