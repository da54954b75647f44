package commands

import (
	"context"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/auth"
	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/user"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
)

// TokenAuth authenticates an access token. The unverified subject claim
// only serves to look the account up; the token then has to verify
// against that account's current key material. Every failure, including
// a missing account, reports bare UNAUTHORIZED.
type TokenAuth struct {
	Token  string
	Secret []byte
}

// Name implements dispatch.Command.
func (c TokenAuth) Name() string {
	return "token_auth"
}

// Execute implements dispatch.Command.
func (c TokenAuth) Execute(ctx context.Context, rc reqctx.Context) (user.User, error) {
	userID, err := auth.UnverifiedSubject(c.Token)
	if err != nil {
		return user.User{}, err
	}

	u, err := rc.Store().UserByID(ctx, userID)
	if err != nil {
		return user.User{}, apperrors.New(apperrors.CodeUnauthorized, "the access token does not verify")
	}

	if err := auth.VerifyToken(c.Secret, u, c.Token); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// BasicAuth authenticates a name and password pair. Every failure,
// including a missing account, reports bare UNAUTHORIZED.
type BasicAuth struct {
	UserName string
	Password string
}

// Name implements dispatch.Command.
func (c BasicAuth) Name() string {
	return "basic_auth"
}

// Execute implements dispatch.Command.
func (c BasicAuth) Execute(ctx context.Context, rc reqctx.Context) (user.User, error) {
	u, err := rc.Store().UserByName(ctx, c.UserName)
	if err != nil {
		return user.User{}, apperrors.New(apperrors.CodeUnauthorized, "the credentials do not match an account")
	}
	if err := auth.VerifyPassword(u, c.Password); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Invalidate revokes every access token issued for an account. It
// authenticates by password, then re-writes the same password so the
// fresh salt rotates the token signing material.
type Invalidate struct {
	UserName string
	Password string
}

// Name implements dispatch.Command.
func (c Invalidate) Name() string {
	return "invalidate"
}

// Execute implements dispatch.Command.
func (c Invalidate) Execute(ctx context.Context, rc reqctx.Context) (struct{}, error) {
	u, err := BasicAuth{UserName: c.UserName, Password: c.Password}.Execute(ctx, rc)
	if err != nil {
		return struct{}{}, err
	}

	self := user.PatchMe{Password: patch.Set(c.Password)}
	if _, err := patch.Run(ctx, rc, rc.Store(), u, userSelfUpdate{patch: self}); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, nil
}

var (
	_ dispatch.Command[user.User] = TokenAuth{}
	_ dispatch.Command[user.User] = BasicAuth{}
	_ dispatch.Command[struct{}]  = Invalidate{}
)
