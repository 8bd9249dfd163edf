// Package service implements account registration and login.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,LockoutStore,TokenIssuer,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"olhopix/internal/auth/models"
	"olhopix/internal/platform/config"
	"olhopix/internal/platform/metrics"
	id "olhopix/pkg/domain"
	dErrors "olhopix/pkg/domain-errors"
	"olhopix/pkg/platform/audit"
	"olhopix/pkg/platform/sentinel"
	strutil "olhopix/pkg/platform/strings"
	"olhopix/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type LockoutStore interface {
	RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error)
	Failures(ctx context.Context, identifier string) (int, error)
	Clear(ctx context.Context, identifier string) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, email string, expiresIn time.Duration) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates registration and login. Stores stay pure I/O; the
// lockout policy, credential checks and audit emission live here.
type Service struct {
	users    UserStore
	lockouts LockoutStore
	tokens   TokenIssuer
	audit    AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics

	tokenTTL time.Duration
	lockout  config.Lockout
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLockout(store LockoutStore, policy config.Lockout) Option {
	return func(s *Service) {
		s.lockouts = store
		s.lockout = policy
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

func New(users UserStore, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}

	svc := &Service{
		users:    users,
		tokens:   tokens,
		logger:   slog.Default(),
		tokenTTL: 30 * time.Minute,
		lockout:  config.Lockout{MaxFailures: 5, Window: 15 * time.Minute},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	input.Normalize()
	if input.Email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if input.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Email:        input.Email,
		Name:         input.Name,
		TaxID:        input.TaxID,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		CreatedAt:    requestcontext.Now(ctx).UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.emit(ctx, audit.Event{
		Action:  string(audit.EventUserCreated),
		UserID:  user.ID,
		Email:   user.Email,
		Subject: user.ID.String(),
	})
	s.metrics.IncrementUsersCreated()

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues an access token. Failed attempts
// count against the lockout window; unknown emails and wrong passwords
// return the same error so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	email = strutil.NormalizeLower(email)
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	if s.isLocked(ctx, email) {
		s.emit(ctx, audit.Event{
			Action:   string(audit.EventAuthLockoutTriggered),
			Email:    email,
			Reason:   "attempt while locked",
			ClientIP: requestcontext.ClientIP(ctx),
		})
		return nil, dErrors.New(dErrors.CodeTooManyRequests, "too many failed login attempts")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordFailure(ctx, email, "unknown email")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email, "wrong password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	s.clearFailures(ctx, email)

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.emit(ctx, audit.Event{
		Action:   string(audit.EventTokenIssued),
		UserID:   user.ID,
		Email:    user.Email,
		ClientIP: requestcontext.ClientIP(ctx),
	})

	return &models.LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

func (s *Service) isLocked(ctx context.Context, email string) bool {
	if s.lockouts == nil {
		return false
	}
	failures, err := s.lockouts.Failures(ctx, email)
	if err != nil {
		// Lockout is best-effort: a counter outage must not block logins.
		s.logger.WarnContext(ctx, "lockout lookup failed", "error", err)
		return false
	}
	return failures >= s.lockout.MaxFailures
}

func (s *Service) recordFailure(ctx context.Context, email, reason string) {
	s.metrics.IncrementLoginFailures()
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventAuthFailed),
		Email:    email,
		Reason:   reason,
		ClientIP: requestcontext.ClientIP(ctx),
	})

	if s.lockouts == nil {
		return
	}
	count, err := s.lockouts.RecordFailure(ctx, email, s.lockout.Window)
	if err != nil {
		s.logger.WarnContext(ctx, "lockout record failed", "error", err)
		return
	}
	if count == s.lockout.MaxFailures {
		s.metrics.IncrementLockouts()
		s.emit(ctx, audit.Event{
			Action:   string(audit.EventAuthLockoutTriggered),
			Email:    email,
			Reason:   "failure threshold reached",
			ClientIP: requestcontext.ClientIP(ctx),
		})
		s.logger.WarnContext(ctx, "login lockout triggered", "email", email)
	}
}

func (s *Service) clearFailures(ctx context.Context, email string) {
	if s.lockouts == nil {
		return
	}
	if err := s.lockouts.Clear(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "lockout clear failed", "error", err)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

