package auth

import (
	"context"
	"errors"
)

// Actor is the authenticated user a request runs for.
type Actor struct {
	UserID string
	OrgID  string
	Role   string
}

// ErrInactiveAccount is returned by an ActorLoader for users that may no
// longer sign in.
var ErrInactiveAccount = errors.New("account is not active")

// ActorLoader resolves the actor for a token subject from the current user
// record. It returns ErrInvalidToken when the user no longer exists.
type ActorLoader interface {
	CurrentActor(ctx context.Context, userID string) (Actor, error)
}

type actorKey struct{}

// WithActor stores a in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok && a.UserID != ""
}
