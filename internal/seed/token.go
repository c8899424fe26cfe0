package seed

import (
	"context"
	"fmt"
	"time"

	"polyglot/internal/auth"
	"polyglot/internal/models"
	"polyglot/internal/repository"

	"gorm.io/gorm"
)

// ExternalToken signs an identity-provider token for an existing demo user so
// the /api surface can be exercised without a real provider.
func ExternalToken(ctx context.Context, db *gorm.DB, secret, issuer, username string, ttl time.Duration) (string, error) {
	user, err := repository.NewUserRepository(db).GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user.ExternalRef == nil {
		return "", models.NewValidationError(fmt.Sprintf("user %q has no external identity", username))
	}

	id := auth.Identity{Ref: *user.ExternalRef, Username: user.Username}
	if user.Email != nil {
		id.Email = *user.Email
	}
	return auth.SignExternal(secret, issuer, id, ttl)
}
