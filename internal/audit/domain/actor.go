package domain

import "context"

type actorKey struct{}

// WithActor tags ctx with the authenticated principal so writes performed
// deeper in the call chain can be attributed to it.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor tagged by WithActor, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey{}).(string)
	return actor, ok && actor != ""
}
