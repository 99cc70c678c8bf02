// Package httpapi exposes the REST surface of the server: the auth and
// session endpoints, the user profile endpoints, and the contacts CRUD.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/contacthub/internal/logging"
	"github.com/dmitrijs2005/contacthub/internal/server/contacts"
	"github.com/dmitrijs2005/contacthub/internal/server/identity"
	"github.com/dmitrijs2005/contacthub/internal/server/users"
)

// AuthService is the authentication subsystem consumed by the handlers.
// *users.Service satisfies it.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*users.User, error)
	Login(ctx context.Context, username, password string) (*users.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*users.TokenPair, error)
	ResolveIdentity(ctx context.Context, accessToken string) (*identity.Snapshot, error)
	RequireAdmin(snap *identity.Snapshot) error
	RequestEmailConfirmation(ctx context.Context, email string) (already bool, err error)
	ConfirmEmail(ctx context.Context, token string) (already bool, err error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string) (email string, err error)
	UpdateAvatar(ctx context.Context, snap *identity.Snapshot, filename, contentType string, body io.Reader) (*users.User, error)
}

// ContactService is the contacts subsystem consumed by the handlers.
// *contacts.Service satisfies it.
type ContactService interface {
	Create(ctx context.Context, who *identity.Snapshot, contact *contacts.Contact) (*contacts.Contact, error)
	Get(ctx context.Context, who *identity.Snapshot, id string) (*contacts.Contact, error)
	List(ctx context.Context, who *identity.Snapshot, filter contacts.ListFilter) ([]*contacts.Contact, error)
	Update(ctx context.Context, who *identity.Snapshot, contact *contacts.Contact) (*contacts.Contact, error)
	Delete(ctx context.Context, who *identity.Snapshot, id string) error
	UpcomingBirthdays(ctx context.Context, who *identity.Snapshot, days int) ([]*contacts.Contact, error)
}

// Server routes HTTP requests to the services.
type Server struct {
	auth      AuthService
	contacts  ContactService
	logger    logging.Logger
	meLimiter *RateLimiter
	srv       *http.Server
}

// NewServer builds the router and the underlying http.Server bound to addr.
func NewServer(addr string, auth AuthService, contactSvc ContactService, logger logging.Logger) *Server {
	s := &Server{
		auth:      auth,
		contacts:  contactSvc,
		logger:    logger,
		meLimiter: NewRateLimiter(meRequestsPerMinute),
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthchecker", s.handleHealthcheck).Methods(http.MethodGet)

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	a.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	a.HandleFunc("/refresh-token", s.handleRefreshToken).Methods(http.MethodPost)
	a.HandleFunc("/request-email", s.handleRequestEmail).Methods(http.MethodPost)
	a.HandleFunc("/confirm-email/{token}", s.handleConfirmEmail).Methods(http.MethodGet)
	a.HandleFunc("/request-password-reset", s.handleRequestPasswordReset).Methods(http.MethodPost)
	a.HandleFunc("/reset-password", s.handleResetPassword).Methods(http.MethodGet)

	u := r.PathPrefix("/users").Subrouter()
	u.Use(s.requireAuth)
	u.HandleFunc("/me", s.rateLimit(s.meLimiter, s.handleMe)).Methods(http.MethodGet)
	u.HandleFunc("/avatar", s.handleUpdateAvatar).Methods(http.MethodPatch)

	c := r.PathPrefix("/contacts").Subrouter()
	c.Use(s.requireAuth)
	// birthdays goes first so it is not captured by {id}
	c.HandleFunc("/birthdays", s.handleUpcomingBirthdays).Methods(http.MethodGet)
	c.HandleFunc("", s.handleListContacts).Methods(http.MethodGet)
	c.HandleFunc("", s.handleCreateContact).Methods(http.MethodPost)
	c.HandleFunc("/{id}", s.handleGetContact).Methods(http.MethodGet)
	c.HandleFunc("/{id}", s.handleUpdateContact).Methods(http.MethodPut)
	c.HandleFunc("/{id}", s.handleDeleteContact).Methods(http.MethodDelete)

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info(context.Background(), "http server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to ContactHub!"})
}
