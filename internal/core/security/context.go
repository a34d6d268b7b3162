package security

import (
	"context"

	appctx "jobquote/internal/core/context"
)

// PrincipalFromContext builds the principal from the authenticated user in context.
// Returns the zero Principal if no user is attached.
func PrincipalFromContext(ctx context.Context) Principal {
	user := appctx.GetUser(ctx)
	if user == nil {
		return Principal{}
	}
	return Principal{ID: user.UserID, Role: Role(user.Role)}
}
