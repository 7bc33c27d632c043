package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/directory-app/directory-api/auth"
)

type apiFixture struct {
	*signupFixture
	app    *fiber.App
	auther *auth.Auther
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	base := newSignupFixture(t)
	auther := auth.NewAuthenticator(base.repo, newTestConfig())

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	auth.RegisterAuthRoutes(app, func(c *auth.AuthController) *auth.AuthController {
		c.Auther = auther
		c.CreateAccount = base.handler
		c.Repo = base.repo
		return c
	})

	return &apiFixture{signupFixture: base, app: app, auther: auther}
}

func (f *apiFixture) request(t *testing.T, method, path string, payload any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	parsed := map[string]json.RawMessage{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func decodeErrors(t *testing.T, body map[string]json.RawMessage) map[string]string {
	t.Helper()
	fields := map[string]string{}
	require.Contains(t, body, "errors")
	require.NoError(t, json.Unmarshal(body["errors"], &fields))
	return fields
}

func decodeUser(t *testing.T, body map[string]json.RawMessage) map[string]any {
	t.Helper()
	user := map[string]any{}
	require.Contains(t, body, "user")
	require.NoError(t, json.Unmarshal(body["user"], &user))
	return user
}

func TestSignupEndpointCreatesAccount(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.request(t, http.MethodPost, "/api/v1/signup", map[string]string{
		"firstname": "ana",
		"lastname":  "lee",
		"email":     "Foo@Bar.com",
		"password":  "secret1",
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	user := decodeUser(t, body)
	assert.Equal(t, "Ana", user["firstname"])
	assert.Equal(t, "Lee", user["lastname"])
	assert.Equal(t, "foo@bar.com", user["email"])
	assert.NotContains(t, user, "password")
}

func TestSignupEndpointValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.request(t, http.MethodPost, "/api/v1/signup", map[string]string{
		"lastname": "lee",
		"email":    "nope",
		"password": "abc",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	fields := decodeErrors(t, body)
	assert.Equal(t, "El nombre es obligatorio", fields["firstname"])
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestSignupEndpointDuplicateEmail(t *testing.T) {
	f := newAPIFixture(t)

	payload := map[string]string{
		"firstname": "Ana",
		"lastname":  "Lee",
		"email":     "foo@bar.com",
		"password":  "secret1",
	}

	resp, _ := f.request(t, http.MethodPost, "/api/v1/signup", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.request(t, http.MethodPost, "/api/v1/signup", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	fields := decodeErrors(t, body)
	assert.Equal(t, auth.DuplicateEmailMessage, fields["email"])
}

func TestLoginEndpointMissingFields(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.request(t, http.MethodPost, "/api/v1/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	fields := decodeErrors(t, body)
	assert.Equal(t, "El email es obligatorio", fields["email"])
	assert.Equal(t, "La contraseña es obligatoria", fields["password"])
}

func TestLoginEndpointFailureShape(t *testing.T) {
	f := newAPIFixture(t)
	seedUser(t, f.repo, "ana@example.com", "secret1")

	// Unknown account and wrong password must be indistinguishable.
	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"unknown account", map[string]string{"email": "nobody@example.com", "password": "secret1"}},
		{"wrong password", map[string]string{"email": "ana@example.com", "password": "wrong"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.request(t, http.MethodPost, "/api/v1/login", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			fields := decodeErrors(t, body)
			assert.Equal(t, auth.LoginFailedMessage, fields["login"])
			assert.Len(t, fields, 1)
		})
	}
}

func TestLoginEndpointSuccess(t *testing.T) {
	f := newAPIFixture(t)
	seedUser(t, f.repo, "ana@example.com", "secret1")

	resp, body := f.request(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    "ana@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	user := decodeUser(t, body)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.NotContains(t, user, "password")

	var token string
	require.Contains(t, body, "token")
	require.NoError(t, json.Unmarshal(body["token"], &token))
	require.NotEmpty(t, token)

	claims, err := f.auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestToggleActiveEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	seeded := seedUser(t, f.repo, "ana@example.com", "secret1")
	require.False(t, seeded.IsActive)

	resp, body := f.request(t, http.MethodPatch, "/api/v1/users/"+seeded.ID.String()+"/active", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	user := decodeUser(t, body)
	assert.Equal(t, true, user["is_active"])

	resp, body = f.request(t, http.MethodPatch, "/api/v1/users/"+seeded.ID.String()+"/active", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user = decodeUser(t, body)
	assert.Equal(t, false, user["is_active"])
}

func TestToggleActiveEndpointBadID(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.request(t, http.MethodPatch, "/api/v1/users/not-a-uuid/active", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeErrors(t, body), "id")
}

func TestToggleActiveEndpointUnknownUser(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.request(t, http.MethodPatch, "/api/v1/users/a1b2c3d4-0000-0000-0000-000000000000/active", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decodeErrors(t, body), "user")
}
