// Package reqctx carries per-request caller authority through command
// execution. A request is either internal, originated by the service
// itself and exempt from every check, or external, carrying the client
// address plus whatever identity and state token the transport resolved.
package reqctx

import (
	"github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/user"
	"github.com/louisbranch/demonlist.space/internal/services/list/etag"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// Data identifies the caller of one request before the request is bound
// to a store connection.
type Data struct {
	internal     bool
	ip           string
	user         *user.User
	precondition string
	conditional  bool
}

// Internal returns caller data for service-originated work.
func Internal() Data {
	return Data{internal: true}
}

// External returns caller data for a client call from the given address.
func External(ip string) Data {
	return Data{ip: ip}
}

// WithUser attaches the authenticated identity. No effect on internal
// data.
func (d Data) WithUser(u user.User) Data {
	if !d.internal {
		d.user = &u
	}
	return d
}

// WithPrecondition declares the state token the target entity must still
// match when the request executes. No effect on internal data.
func (d Data) WithPrecondition(token string) Data {
	if !d.internal {
		d.precondition = token
		d.conditional = true
	}
	return d
}

// Bind pairs the caller data with the store a worker acquired for it.
func (d Data) Bind(store storage.Store) Context {
	return Context{data: d, store: store}
}

// Context is caller data bound to one store for the duration of a
// command. Commands consult it for authorization, preconditions and
// store access; they never reach around it.
type Context struct {
	data  Data
	store storage.Store
}

// Store returns the store this request executes against.
func (c Context) Store() storage.Store {
	return c.store
}

// IP returns the client address, empty for internal contexts.
func (c Context) IP() string {
	return c.data.ip
}

// User returns the authenticated identity when one is attached.
func (c Context) User() (user.User, bool) {
	if c.data.user == nil {
		return user.User{}, false
	}
	return *c.data.user, true
}

// Conditional reports whether the caller declared a precondition token.
func (c Context) Conditional() bool {
	return c.data.conditional
}

// CheckPermissions verifies the caller holds at least one of the
// required flags. An empty requirement passes for everyone, including
// unauthenticated callers.
func (c Context) CheckPermissions(required role.Permissions) error {
	if required == 0 {
		return nil
	}
	if c.data.internal {
		return nil
	}
	if c.data.user == nil {
		return errors.New(errors.CodeUnauthorized, "request carries no authenticated identity")
	}
	if !c.data.user.Permissions.HasAny(required) {
		return errors.WithMetadata(
			errors.CodeMissingPermissions,
			"caller lacks every required permission",
			map[string]string{"required": required.String()},
		)
	}
	return nil
}

// CheckPrecondition verifies the entity still matches the state token the
// caller declared. Calling it on an external request that declared no
// token is a programming error, reported as such rather than passed
// silently.
func (c Context) CheckPrecondition(entity any) error {
	if c.data.internal {
		return nil
	}
	if !c.data.conditional {
		return errors.New(errors.CodeInvalidState, "checked precondition on a request that declared none")
	}

	token, err := etag.Compute(entity)
	if err != nil {
		return errors.Wrap(errors.CodeInvalidState, "entity state is not hashable", err)
	}
	if token != c.data.precondition {
		return errors.New(errors.CodePreconditionFailed, "entity no longer matches the declared state token")
	}
	return nil
}

// IsListModerator reports whether the caller may see and mutate
// moderation-only state. Internal contexts always may.
func (c Context) IsListModerator() bool {
	if c.data.internal {
		return true
	}
	if c.data.user == nil {
		return false
	}
	return c.data.user.ListTeamMember()
}
