package commands

import (
	"context"
	"log"

	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/record"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/filter"
	"github.com/louisbranch/demonlist.space/internal/services/list/pagination"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
	"github.com/louisbranch/demonlist.space/internal/services/list/video"
)

// RecordByID retrieves one record. The submitting source is moderation
// state; callers outside the list team receive the record without it.
type RecordByID struct {
	ID int64
}

// Name implements dispatch.Command.
func (c RecordByID) Name() string {
	return "record_by_id"
}

// Execute implements dispatch.Command.
func (c RecordByID) Execute(ctx context.Context, rc reqctx.Context) (record.Record, error) {
	r, err := rc.Store().RecordByID(ctx, c.ID)
	if err != nil {
		return record.Record{}, notFound("record", itoa(c.ID), err)
	}
	if !rc.IsListModerator() {
		r.Submitter = 0
	}
	return r, nil
}

// DeleteRecordByID removes one record.
type DeleteRecordByID struct {
	ID int64
}

// Name implements dispatch.Command.
func (c DeleteRecordByID) Name() string {
	return "delete_record"
}

// Execute implements dispatch.Command.
func (c DeleteRecordByID) Execute(ctx context.Context, rc reqctx.Context) (struct{}, error) {
	if err := rc.CheckPermissions(role.ListModerator | role.ListAdministrator); err != nil {
		return struct{}{}, err
	}

	r, err := rc.Store().RecordByID(ctx, c.ID)
	if err != nil {
		return struct{}{}, notFound("record", itoa(c.ID), err)
	}
	if rc.Conditional() {
		if err := rc.CheckPrecondition(r); err != nil {
			return struct{}{}, err
		}
	}

	log.Printf("deleting record %d", c.ID)
	if err := rc.Store().DeleteRecord(ctx, c.ID); err != nil {
		return struct{}{}, notFound("record", itoa(c.ID), err)
	}
	return struct{}{}, nil
}

// PatchRecord applies a partial update to one record.
type PatchRecord struct {
	ID    int64
	Patch record.Patch
	// Videos validates video references. Nil means the stock allowlist.
	Videos video.Validator
}

// Name implements dispatch.Command.
func (c PatchRecord) Name() string {
	return "patch_record"
}

// Execute implements dispatch.Command.
func (c PatchRecord) Execute(ctx context.Context, rc reqctx.Context) (record.Record, error) {
	current, err := rc.Store().RecordByID(ctx, c.ID)
	if err != nil {
		return record.Record{}, notFound("record", itoa(c.ID), err)
	}
	return patch.Run(ctx, rc, rc.Store(), current, recordUpdate{patch: c.Patch, videos: c.Videos})
}

// recordUpdate adapts a record patch onto the update pipeline.
type recordUpdate struct {
	patch  record.Patch
	videos video.Validator
}

func (u recordUpdate) RequiredPermissions() role.Permissions {
	return u.patch.RequiredPermissions()
}

func (u recordUpdate) Apply(ctx context.Context, store storage.Store, current record.Record) (record.Record, error) {
	updated := current

	if u.patch.Progress.Present() {
		d, err := store.DemonByName(ctx, current.Demon)
		if err != nil {
			return current, notFound("demon", current.Demon, err)
		}
		if err := record.ValidateProgress(u.patch.Progress.Value(), d.Requirement); err != nil {
			return current, err
		}
		updated.Progress = u.patch.Progress.Value()
	}

	if u.patch.Video.Present() {
		if u.patch.Video.IsNull() {
			updated.Video = ""
		} else {
			videos := u.videos
			if videos == nil {
				videos = video.Default()
			}
			canonical, err := videos.Validate(u.patch.Video.Value())
			if err != nil {
				return current, err
			}
			updated.Video = canonical
		}
	}

	if u.patch.Status.Present() {
		status, err := record.ParseStatus(u.patch.Status.Value())
		if err != nil {
			return current, err
		}
		updated.Status = status
	}

	return updated, nil
}

func (u recordUpdate) Persist(ctx context.Context, store storage.Store, prior, updated record.Record) error {
	if err := store.UpdateRecord(ctx, updated); err != nil {
		return dbError(err)
	}
	return nil
}

// ListRecords pages through records, reviewable by the list team only.
type ListRecords struct {
	Query pagination.Query
}

// Name implements dispatch.Command.
func (c ListRecords) Name() string {
	return "list_records"
}

// Execute implements dispatch.Command.
func (c ListRecords) Execute(ctx context.Context, rc reqctx.Context) (Page[record.Record], error) {
	if err := rc.CheckPermissions(role.ListHelper | role.ListModerator | role.ListAdministrator); err != nil {
		return Page[record.Record]{}, err
	}

	cond, err := filter.Records(c.Query.Filter)
	if err != nil {
		return Page[record.Record]{}, err
	}

	items, nav, err := pagination.Paginate(ctx, c.Query, recordSource{store: rc.Store(), filter: cond})
	if err != nil {
		return Page[record.Record]{}, dbError(err)
	}
	if !rc.IsListModerator() {
		for i := range items {
			items[i].Submitter = 0
		}
	}
	return Page[record.Record]{Items: items, Links: nav}, nil
}

// recordSource binds the record store to one filtered listing.
type recordSource struct {
	store  storage.RecordStore
	filter storage.Condition
}

func (s recordSource) Window(ctx context.Context, after, before *int64, limit int) ([]record.Record, error) {
	return s.store.ListRecords(ctx, storage.Window{After: after, Before: before, Limit: limit, Filter: s.filter})
}

func (s recordSource) First(ctx context.Context) (int64, error) {
	return s.store.FirstRecordID(ctx, s.filter)
}

func (s recordSource) Last(ctx context.Context) (int64, error) {
	return s.store.LastRecordID(ctx, s.filter)
}

func (s recordSource) ExistsAfter(ctx context.Context, key int64) (bool, error) {
	return s.store.RecordAfter(ctx, s.filter, key)
}

func (s recordSource) ExistsBefore(ctx context.Context, key int64) (bool, error) {
	return s.store.RecordBefore(ctx, s.filter, key)
}

func (s recordSource) Key(item record.Record) int64 {
	return item.ID
}

var (
	_ dispatch.Command[record.Record]            = RecordByID{}
	_ dispatch.Command[struct{}]                 = DeleteRecordByID{}
	_ dispatch.Command[record.Record]            = PatchRecord{}
	_ dispatch.Command[Page[record.Record]]      = ListRecords{}
	_ patch.Update[record.Record, storage.Store] = recordUpdate{}
	_ pagination.Source[record.Record]           = recordSource{}
)
