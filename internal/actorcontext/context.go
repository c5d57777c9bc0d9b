package actorcontext

import (
	"context"
	"strings"
)

type contextKey string

const actorKey contextKey = "actor"

// SystemActor is recorded when no actor was supplied with a mutation.
const SystemActor = "system"

// WithActor annotates ctx with the acting identity for audit purposes.
func WithActor(ctx context.Context, actor string) context.Context {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting identity, or empty when unset.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok {
		return v
	}
	return ""
}

// Resolve picks the explicit actor when given, then the context actor,
// then falls back to the system actor.
func Resolve(ctx context.Context, explicit string) string {
	if actor := strings.TrimSpace(explicit); actor != "" {
		return actor
	}
	if actor := ActorFromContext(ctx); actor != "" {
		return actor
	}
	return SystemActor
}
