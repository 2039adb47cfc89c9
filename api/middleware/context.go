package middleware

import (
	"context"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

type actorKey struct{}

// Actor is the authenticated operator behind an admin request.
type Actor struct {
	AdminID string
	Role    enums.AdminRole
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

func AdminIDFromContext(ctx context.Context) string {
	actor, _ := ActorFromContext(ctx)
	return actor.AdminID
}

func RoleFromContext(ctx context.Context) enums.AdminRole {
	actor, _ := ActorFromContext(ctx)
	return actor.Role
}

// HasRole reports whether the request actor holds one of roles.
func HasRole(ctx context.Context, roles ...enums.AdminRole) bool {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return false
	}
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
