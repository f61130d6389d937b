// internal/domain/actor.go
package domain

import "context"

// Actor is the authenticated user an action is recorded for.
type Actor struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	FactoryID string `json:"factoryId,omitempty"`
}

type actorKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok && a.UserID != ""
}

// RequireActor is ActorFrom with ErrUnauthenticated on absence.
func RequireActor(ctx context.Context) (Actor, error) {
	a, ok := ActorFrom(ctx)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}
	return a, nil
}
