package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Register(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	resp := app.do(t, http.MethodPost, apiPath("/users"), "", map[string]string{
		"username": "root",
		"name":     "Rooty",
		"password": "sekret",
	})
	assertStatus(t, resp, http.StatusCreated)
	assertContentType(t, resp, "application/json")

	var raw map[string]any
	decodeJSON(t, resp, &raw)
	assert.Equal(t, "root", raw["username"])
	assert.Equal(t, "Rooty", raw["name"])
	assert.NotEmpty(t, raw["id"])
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "password_hash")
}

func TestUserHandler_RegisterAcceptsUserField(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	resp := app.do(t, http.MethodPost, apiPath("/users"), "", map[string]string{
		"user":     "second",
		"name":     "Rooty",
		"password": "sekret",
	})
	assertStatus(t, resp, http.StatusCreated)
	var out accountResponse
	decodeJSON(t, resp, &out)
	assert.Equal(t, "second", out.Username)

	app.login(t, "second", "sekret")
}

func TestUserHandler_RegisterErrors(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.register(t, "root", "Rooty", "sekret")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "duplicate username",
			body:       map[string]string{"username": "root", "name": "Other", "password": "pw"},
			wantStatus: http.StatusConflict,
			wantCode:   "duplicate_username",
		},
		{
			name:       "missing username",
			body:       map[string]string{"name": "Rooty", "password": "pw"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "missing name",
			body:       map[string]string{"username": "x", "password": "pw"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "missing password",
			body:       map[string]string{"username": "x", "name": "X"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "password too long",
			body:       map[string]string{"username": "x", "name": "X", "password": strings.Repeat("p", 73)},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, apiPath("/users"), "", tt.body)
			assertErrorCode(t, resp, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestUserHandler_MalformedBody(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	resp, err := app.Client().Post(app.URL+apiPath("/users"), "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assertErrorCode(t, resp, http.StatusBadRequest, "invalid_input")
}
