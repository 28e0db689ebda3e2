package account

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrInvalidInput signals missing or malformed registration/login fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateUsername is returned when the handle is already registered.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials is returned for any failed login. It never reveals
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated is returned when an operation requires a session.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound is returned by repositories when no account matches.
	ErrNotFound = errors.New("account not found")
	// ErrNoSuchSession is returned when a session token is unknown or expired.
	ErrNoSuchSession = errors.New("session not found")
)

const (
	MaxUsernameLength = 64
	MaxNameLength     = 128
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// ID represents Account identifier.
type ID = uuid.UUID

// Account is a registered identity.
type Account struct {
	ID           ID
	Username     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Params represents the values required to create an Account.
type Params struct {
	ID           ID
	Username     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// New validates params and builds an Account.
func New(params Params) (*Account, error) {
	username := NormalizeUsername(params.Username)
	name := strings.TrimSpace(params.Name)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, MaxNameLength)
	}
	if params.PasswordHash == "" {
		return nil, fmt.Errorf("%w: password hash is required", ErrInvalidInput)
	}
	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Account{
		ID:           id,
		Username:     username,
		Name:         name,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
	}, nil
}

// NormalizeUsername trims surrounding whitespace. Handles are case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername checks an already normalized handle.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username must be at most %d characters", ErrInvalidInput, MaxUsernameLength)
	}
	return nil
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordBytes)
	}
	return nil
}

// Session binds a hashed token to exactly one account.
type Session struct {
	TokenHash string    `json:"token_hash"`
	AccountID ID        `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry. A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Caller identifies who is making a request. The zero value is anonymous.
type Caller struct {
	account *Account
}

// Anonymous returns the caller used when no valid session is presented.
func Anonymous() Caller {
	return Caller{}
}

// Authenticated wraps a resolved account.
func Authenticated(a *Account) Caller {
	return Caller{account: a}
}

// IsAnonymous reports whether no account is attached.
func (c Caller) IsAnonymous() bool {
	return c.account == nil
}

// Account returns the resolved account, or nil when anonymous.
func (c Caller) Account() *Account {
	return c.account
}

// ID returns the account id, or uuid.Nil when anonymous.
func (c Caller) ID() ID {
	if c.account == nil {
		return uuid.Nil
	}
	return c.account.ID
}
