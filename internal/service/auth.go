package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"docvault/internal/auth"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// RegisterInput carries a new account's credentials.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is a freshly issued token together with the identity it belongs to.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService registers identities, exchanges credentials for tokens and resolves identities.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// FindUser returns the identity with the given ID, or ErrUserNotFound.
	FindUser(ctx context.Context, id string) (*model.User, error)
}

type authService struct {
	users   repository.UserRepository
	tokens  *auth.TokenManager
	cache   *gocache.Cache
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

// AuthOption configures an AuthService.
type AuthOption func(*authService)

func WithAuthLogger(l *zap.SugaredLogger) AuthOption {
	return func(s *authService) { s.logger = l.Named("auth") }
}

func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(s *authService) { s.metrics = m }
}

// WithIdentityCache caches resolved identities for ttl, purging expired entries every cleanup.
func WithIdentityCache(ttl, cleanup time.Duration) AuthOption {
	return func(s *authService) { s.cache = gocache.New(ttl, cleanup) }
}

func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *authService) { s.now = now }
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, opts ...AuthOption) AuthService {
	s := &authService{
		users:  users,
		tokens: tokens,
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (_ *AuthResult, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer endSpan(span, &err)

	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.logger.Infow("user registered", "user_id", u.ID)
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (_ *AuthResult, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer endSpan(span, &err)

	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthenticationFailed("unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.ComparePassword(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.AuthenticationFailed("wrong_password")
		return nil, ErrInvalidCredentials
	}

	s.remember(u)
	return s.issue(u)
}

func (s *authService) FindUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(id); ok {
			u := *v.(*model.User)
			return &u, nil
		}
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.remember(u)
	return u, nil
}

func (s *authService) remember(u *model.User) {
	if s.cache == nil {
		return
	}
	cp := *u
	s.cache.SetDefault(u.ID, &cp)
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
