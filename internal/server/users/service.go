package users

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/contacthub/internal/common"
	"github.com/dmitrijs2005/contacthub/internal/logging"
	"github.com/dmitrijs2005/contacthub/internal/server/auth"
	"github.com/dmitrijs2005/contacthub/internal/server/config"
	"github.com/dmitrijs2005/contacthub/internal/server/email"
	"github.com/dmitrijs2005/contacthub/internal/server/identity"
	"github.com/dmitrijs2005/contacthub/internal/server/storage"
)

// Registration conflicts, distinguishable so the API can name the taken field.
var (
	ErrEmailTaken    = fmt.Errorf("%w: email", common.ErrorAlreadyExists)
	ErrUsernameTaken = fmt.Errorf("%w: username", common.ErrorAlreadyExists)
)

// generatedPasswordLength is the length of passwords minted by the
// reset-password flow.
const generatedPasswordLength = 12

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IdentityCache is the read-through cache consulted by ResolveIdentity.
type IdentityCache interface {
	Get(ctx context.Context, username string) (*identity.Snapshot, bool)
	Put(ctx context.Context, username string, snap *identity.Snapshot)
}

// Service provides authentication-related operations:
//   - Register: create users and kick off email confirmation
//   - Login: verify credentials and mint token pairs
//   - Refresh: rotate refresh tokens and mint new access tokens
//   - ResolveIdentity: turn a bearer access token into an identity snapshot
//   - email confirmation and password reset token flows
type Service struct {
	repo    Repository
	cache   IdentityCache
	codec   *auth.Codec
	sender  email.Sender
	avatars storage.AvatarStore
	logger  logging.Logger

	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	publicBaseURL                string

	wg            sync.WaitGroup
	workerTimeout time.Duration
}

// NewService constructs a Service from its collaborators and server config.
func NewService(repo Repository, cache IdentityCache, codec *auth.Codec, sender email.Sender,
	avatars storage.AvatarStore, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		cache:                        cache,
		codec:                        codec,
		sender:                       sender,
		avatars:                      avatars,
		logger:                       logger,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		publicBaseURL:                cfg.PublicBaseURL,
		workerTimeout:                30 * time.Second,
	}
}

// Wait blocks until all background email workers have finished. Called on
// shutdown and by tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Register creates an unconfirmed user and sends the confirmation email in
// the background. Conflicts surface as ErrEmailTaken / ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, username, emailAddr, password string) (*User, error) {
	if _, err := s.repo.GetByEmail(ctx, emailAddr); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &User{
		Username:       username,
		Email:          emailAddr,
		HashedPassword: hashed,
		Avatar:         gravatarURL(emailAddr),
		Role:           identity.RoleUser,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		// The existence checks above race with concurrent registrations;
		// the unique constraints are the authority.
		if errors.Is(err, common.ErrorAlreadyExists) {
			if errors.Is(err, ErrUsernameTaken) {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, common.ErrorInternal
	}

	s.sendConfirmationEmail(user.Email, user.Username)
	return user, nil
}

// Login verifies credentials and, on success, issues a fresh token pair and
// stores the new refresh token. An unknown username and a wrong password are
// indistinguishable to the caller; an unconfirmed email is not, since
// confirmation is a separate precondition rather than a secret.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, common.ErrorUnauthorized
	}

	if !user.Confirmed {
		return nil, common.ErrEmailNotConfirmed
	}

	return s.generateTokenPair(ctx, user)
}

// Refresh validates a refresh token, rotates it, and returns a fresh pair.
// The presented token must match the currently stored one; a superseded
// token fails even while unexpired.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	username, err := s.codec.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repo.GetByUsernameAndRefreshToken(ctx, username, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return s.generateTokenPair(ctx, user)
}

// ResolveIdentity is the authorization gate for protected requests: it turns
// a bearer access token into an identity snapshot, consulting the cache
// first and populating it on a miss.
func (s *Service) ResolveIdentity(ctx context.Context, accessToken string) (*identity.Snapshot, error) {
	username, err := s.codec.Parse(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	if snap, ok := s.cache.Get(ctx, username); ok {
		return snap, nil
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	snap := user.Snapshot()
	s.cache.Put(ctx, username, snap)
	return snap, nil
}

// RequireAdmin gates admin-only operations on a resolved identity.
func (s *Service) RequireAdmin(snap *identity.Snapshot) error {
	if !snap.IsAdmin() {
		return common.ErrorForbidden
	}
	return nil
}

// RequestEmailConfirmation re-sends the confirmation email. Returns
// already=true without sending when the address is confirmed.
func (s *Service) RequestEmailConfirmation(ctx context.Context, emailAddr string) (already bool, err error) {
	user, err := s.repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, common.ErrorNotFound
		}
		return false, common.ErrorInternal
	}

	if user.Confirmed {
		return true, nil
	}

	s.sendConfirmationEmail(user.Email, user.Username)
	return false, nil
}

// ConfirmEmail consumes an email-action token and marks the address
// confirmed. Confirming twice is an idempotent success with already=true.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (already bool, err error) {
	emailAddr, err := s.codec.ParseEmailToken(token)
	if err != nil {
		return false, common.ErrInvalidToken
	}

	user, err := s.repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, common.ErrorNotFound
		}
		return false, common.ErrorInternal
	}

	if user.Confirmed {
		return true, nil
	}

	if err := s.repo.ConfirmEmail(ctx, emailAddr); err != nil {
		return false, common.ErrorInternal
	}
	return false, nil
}

// RequestPasswordReset issues an email-action token and mails the reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	token, err := s.codec.GenerateEmailToken(user.Email)
	if err != nil {
		return common.ErrorInternal
	}

	link := s.publicBaseURL + "/auth/reset-password?token=" + token
	s.sendAsync("password reset", user.Email, email.PasswordResetMessage(user.Email, user.Username, link))
	return nil
}

// ResetPassword consumes a reset token: it generates a random alphanumeric
// password, stores its hash, and mails the plaintext to the user. The
// plaintext is never returned to the HTTP caller.
func (s *Service) ResetPassword(ctx context.Context, token string) (string, error) {
	emailAddr, err := s.codec.ParseEmailToken(token)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	user, err := s.repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	password, err := common.MakeRandAlphanumericString(generatedPasswordLength)
	if err != nil {
		return "", common.ErrorInternal
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", common.ErrorInternal
	}

	if err := s.repo.UpdatePassword(ctx, user.Email, hashed); err != nil {
		return "", common.ErrorInternal
	}

	s.sendAsync("new password", user.Email, email.NewPasswordMessage(user.Email, user.Username, password))
	return user.Email, nil
}

// UpdateAvatar uploads the image to the avatar store and records its URL on
// the user row. The cached identity snapshot is not evicted; it catches up
// when its TTL elapses.
func (s *Service) UpdateAvatar(ctx context.Context, snap *identity.Snapshot, filename, contentType string, body io.Reader) (*User, error) {
	key := fmt.Sprintf("avatars/%s%s", snap.Username, path.Ext(filename))

	url, err := s.avatars.Upload(ctx, key, contentType, body)
	if err != nil {
		s.logger.Error(ctx, "avatar upload failed", "username", snap.Username, "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.repo.UpdateAvatar(ctx, snap.Email, url); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	user, err := s.repo.GetByEmail(ctx, snap.Email)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return user, nil
}

// gravatarURL derives the default avatar for a new account, hashing the
// address the way Gravatar expects: lowercased, trimmed, MD5.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", sum)
}

// --- helpers below ---

func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	access, err := s.codec.Generate(user.Username, auth.TokenTypeAccess, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := s.codec.Generate(user.Username, auth.TokenTypeRefresh, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sendConfirmationEmail(to, username string) {
	token, err := s.codec.GenerateEmailToken(to)
	if err != nil {
		s.logger.Error(context.Background(), "confirmation token generation failed", "to", to, "error", err)
		return
	}
	link := s.publicBaseURL + "/auth/confirm-email/" + token
	s.sendAsync("confirmation", to, email.ConfirmationMessage(to, username, link))
}

// sendAsync dispatches an email off the request path. Failures are logged,
// never surfaced to the HTTP caller.
func (s *Service) sendAsync(what, to string, msg email.Message) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.workerTimeout)
		defer cancel()

		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Error(ctx, "sending "+what+" email failed", "to", to, "error", err)
		}
	}()
}
