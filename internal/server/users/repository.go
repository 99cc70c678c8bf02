package users

import "context"

// Repository is the user directory boundary. Implementations return
// common.ErrorNotFound when no row matches and common.ErrorAlreadyExists on
// unique-constraint violations.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsernameAndRefreshToken matches the currently stored refresh
	// token exactly; a superseded token finds nothing even if it still
	// decodes validly.
	GetByUsernameAndRefreshToken(ctx context.Context, username, refreshToken string) (*User, error)

	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, hashedPassword string) error
	UpdateAvatar(ctx context.Context, email, avatarURL string) error
}
