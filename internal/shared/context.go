package shared

import (
	"context"
	"strings"
)

// SystemActor labels changes made without an identified operator.
const SystemActor = "system"

type actorContextKey struct{}

// ContextWithActor stores the operator label in context.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, strings.TrimSpace(actor))
}

// ActorFromContext extracts the operator label, defaulting to SystemActor.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	if actor == "" {
		return SystemActor
	}
	return actor
}

// Invalidator drops derived, cached views after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// NopInvalidator is used when no cache is configured.
type NopInvalidator struct{}

// Bump implements Invalidator.
func (NopInvalidator) Bump(context.Context) error { return nil }
