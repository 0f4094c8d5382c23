package admin

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/pkg/binder"
)

// User is an admin panel account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Storage defines the admin user lookups the service needs.
type Storage interface {
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
}

type Service struct {
	storage      Storage
	errorHandler handler.ErrorHandler[handler.Context]
	now          func() time.Time
}

type ServiceOption func(*Service)

// WithClock overrides the token mint clock, used in tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(storage Storage, errorHandler handler.ErrorHandler[handler.Context], opts ...ServiceOption) *Service {
	if storage == nil {
		panic("admin: storage is required")
	}
	s := &Service{
		storage:      storage,
		errorHandler: errorHandler,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", handler.Wrap(s.login,
		handler.WithBinders[handler.Context, LoginRequest](binder.JSON(), binder.Form()),
		handler.WithErrorHandler[handler.Context, LoginRequest](s.errorHandler),
	))

	return r
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (req LoginRequest) Validate() error {
	errs := handler.ValidationError{}
	if strings.TrimSpace(req.Username) == "" {
		errs["username"] = append(errs["username"], "username is required")
	}
	if req.Password == "" {
		errs["password"] = append(errs["password"], "password is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Service) login(ctx handler.Context, req LoginRequest) handler.Response {
	if err := req.Validate(); err != nil {
		return handler.JSONError(err)
	}

	user, err := s.storage.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return handler.JSONError(handler.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return handler.JSONError(handler.ErrUnauthorized)
	}

	return handler.JSON(loginResponse{
		Token:    MintToken(user.Username, s.now()),
		Username: user.Username,
	})
}

// HashPassword creates a bcrypt hash for storing a new admin password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
