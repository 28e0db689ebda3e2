package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	domainAccount "github.com/noobLue/fullstack5pw/internal/domain/account"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
	"github.com/noobLue/fullstack5pw/internal/pkg/tokenhash"
)

// DefaultSessionTTL applies when Options.SessionTTL is zero.
const DefaultSessionTTL = 24 * time.Hour

// LoginRecorder observes login outcomes.
type LoginRecorder interface {
	LoginAttempt(success bool)
}

// Options tunes hashing and session lifetime.
type Options struct {
	BcryptCost int
	SessionTTL time.Duration
	Metrics    LoginRecorder
}

// Service registers accounts and manages their sessions.
type Service struct {
	accounts   repository.AccountRepository
	sessions   repository.SessionStore
	logger     *slog.Logger
	bcryptCost int
	sessionTTL time.Duration
	metrics    LoginRecorder
	now        func() time.Time

	// dummyHash is compared against when the username is unknown so both
	// failure paths spend the same bcrypt work.
	dummyHash []byte
}

// RegisterParams carries the registration form.
type RegisterParams struct {
	Username string
	Name     string
	Password string
}

// Login is the outcome of a successful Authenticate. Token is only available here.
type Login struct {
	Token   string
	Session *domainAccount.Session
	Account *domainAccount.Account
}

// NewService instantiates the service.
func NewService(accounts repository.AccountRepository, sessions repository.SessionStore, opts Options, logger *slog.Logger) (*Service, error) {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:   accounts,
		sessions:   sessions,
		logger:     logger,
		bcryptCost: cost,
		sessionTTL: ttl,
		metrics:    opts.Metrics,
		now:        func() time.Time { return time.Now().UTC() },
		dummyHash:  dummy,
	}, nil
}

// Register creates a new account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*domainAccount.Account, error) {
	username := domainAccount.NormalizeUsername(params.Username)
	if err := domainAccount.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domainAccount.ValidatePassword(params.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc, err := domainAccount.New(domainAccount.Params{
		Username:     username,
		Name:         params.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, domainAccount.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", "account_id", acc.ID, "username", acc.Username)
	return acc, nil
}

// Authenticate verifies credentials and mints a new session.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Login, error) {
	username = domainAccount.NormalizeUsername(username)
	if username == "" || password == "" {
		s.recordLogin(false)
		return nil, domainAccount.ErrInvalidCredentials
	}

	acc, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domainAccount.ErrNotFound) {
			return nil, fmt.Errorf("lookup account: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.recordLogin(false)
		return nil, domainAccount.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		s.recordLogin(false)
		s.logger.Debug("login rejected", "username", username)
		return nil, domainAccount.ErrInvalidCredentials
	}

	token, err := tokenhash.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now()
	session := &domainAccount.Session{
		TokenHash: tokenhash.Hash(token),
		AccountID: acc.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.recordLogin(true)
	s.logger.Info("session started", "account_id", acc.ID)
	return &Login{Token: token, Session: session, Account: acc}, nil
}

// ResolveCaller maps a token to its account. It never fails: unknown, expired
// or absent tokens and store errors all resolve to Anonymous.
func (s *Service) ResolveCaller(ctx context.Context, token string) domainAccount.Caller {
	if token == "" {
		return domainAccount.Anonymous()
	}
	session, err := s.sessions.Get(ctx, tokenhash.Hash(token))
	if err != nil {
		if !errors.Is(err, domainAccount.ErrNoSuchSession) {
			s.logger.Warn("session lookup failed", "error", err)
		}
		return domainAccount.Anonymous()
	}
	if !tokenhash.Verify(session.TokenHash, token) || session.Expired(s.now()) {
		return domainAccount.Anonymous()
	}
	acc, err := s.accounts.Get(ctx, session.AccountID)
	if err != nil {
		if !errors.Is(err, domainAccount.ErrNotFound) {
			s.logger.Warn("session account lookup failed", "account_id", session.AccountID, "error", err)
		}
		return domainAccount.Anonymous()
	}
	return domainAccount.Authenticated(acc)
}

// EndSession removes the session bound to token.
func (s *Service) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return domainAccount.ErrUnauthenticated
	}
	if err := s.sessions.Delete(ctx, tokenhash.Hash(token)); err != nil {
		if errors.Is(err, domainAccount.ErrNoSuchSession) {
			return err
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SessionTTL exposes the configured lifetime for cookie expiry.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *Service) recordLogin(success bool) {
	if s.metrics != nil {
		s.metrics.LoginAttempt(success)
	}
}
