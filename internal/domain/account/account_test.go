package account

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, err := New(Params{
		Username:     " root ",
		Name:         "Rooty",
		PasswordHash: "$2a$04$hash",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, a.ID)
	require.Equal(t, "root", a.Username)
	require.Equal(t, "Rooty", a.Name)
}

func TestNew_Invalid(t *testing.T) {
	tests := map[string]Params{
		"empty username": {Name: "n", PasswordHash: "h"},
		"empty name":     {Username: "u", Name: " ", PasswordHash: "h"},
		"missing hash":   {Username: "u", Name: "n"},
		"long username":  {Username: strings.Repeat("u", MaxUsernameLength+1), Name: "n", PasswordHash: "h"},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(params)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("root"))
	require.ErrorIs(t, ValidatePassword(""), ErrInvalidInput)
	require.ErrorIs(t, ValidatePassword(strings.Repeat("p", MaxPasswordBytes+1)), ErrInvalidInput)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	require.False(t, Session{}.Expired(now))
	require.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	require.True(t, Session{ExpiresAt: now}.Expired(now))
}

func TestCaller(t *testing.T) {
	anon := Anonymous()
	require.True(t, anon.IsAnonymous())
	require.Nil(t, anon.Account())
	require.Equal(t, uuid.Nil, anon.ID())

	a := &Account{ID: uuid.New(), Username: "root"}
	c := Authenticated(a)
	require.False(t, c.IsAnonymous())
	require.Equal(t, a.ID, c.ID())
	require.Same(t, a, c.Account())
}
