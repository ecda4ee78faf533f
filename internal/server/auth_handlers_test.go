package server

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"campus/internal/featureflags"
	"campus/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestSignup(t *testing.T) {
	t.Run("Happy Path", func(t *testing.T) {
		s, deps := newTestServer()

		// Create assigns the ID and GetByEmail serves the stored record
		// for the automatic login that follows signup.
		stored := &models.User{}
		deps.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) {
				u := args.Get(1).(*models.User)
				u.ID = 1
				*stored = *u
			}).Return(nil)
		deps.userRepo.On("GetByEmail", mock.Anything, "erin@example.com").Return(stored, nil)

		app := fiber.New()
		app.Post("/auth/signup", s.Signup)

		req := httptest.NewRequest("POST", "/auth/signup", jsonBody(t, fiber.Map{
			"username": "erin",
			"email":    "erin@example.com",
			"password": "Str0ng!Passw0rd",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "erin", body.User.Username)
		deps.userRepo.AssertExpectations(t)
	})

	t.Run("Missing Fields", func(t *testing.T) {
		s, _ := newTestServer()
		app := fiber.New()
		app.Post("/auth/signup", s.Signup)

		req := httptest.NewRequest("POST", "/auth/signup", jsonBody(t, fiber.Map{
			"username": "erin",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Weak Password", func(t *testing.T) {
		s, _ := newTestServer()
		app := fiber.New()
		app.Post("/auth/signup", s.Signup)

		req := httptest.NewRequest("POST", "/auth/signup", jsonBody(t, fiber.Map{
			"username": "erin",
			"email":    "erin@example.com",
			"password": "short",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Signups Closed", func(t *testing.T) {
		s, _ := newTestServer()
		s.flags = featureflags.NewManager("open_signups=off")
		app := fiber.New()
		app.Post("/auth/signup", s.Signup)

		req := httptest.NewRequest("POST", "/auth/signup", jsonBody(t, fiber.Map{
			"username": "erin",
			"email":    "erin@example.com",
			"password": "Str0ng!Passw0rd",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	const password = "Str0ng!Passw0rd"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	account := &models.User{ID: 3, Username: "frank", Email: "frank@example.com", Password: string(hash)}

	t.Run("Happy Path", func(t *testing.T) {
		s, deps := newTestServer()
		deps.userRepo.On("GetByEmail", mock.Anything, "frank@example.com").Return(account, nil)

		app := fiber.New()
		app.Post("/auth/login", s.Login)

		req := httptest.NewRequest("POST", "/auth/login", jsonBody(t, fiber.Map{
			"email":    "frank@example.com",
			"password": password,
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, uint(3), body.User.ID)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		s, deps := newTestServer()
		deps.userRepo.On("GetByEmail", mock.Anything, "frank@example.com").Return(account, nil)

		app := fiber.New()
		app.Post("/auth/login", s.Login)

		req := httptest.NewRequest("POST", "/auth/login", jsonBody(t, fiber.Map{
			"email":    "frank@example.com",
			"password": "nope",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		s, deps := newTestServer()
		deps.userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		app := fiber.New()
		app.Post("/auth/login", s.Login)

		req := httptest.NewRequest("POST", "/auth/login", jsonBody(t, fiber.Map{
			"email":    "ghost@example.com",
			"password": password,
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Locked After Anomalous Failures", func(t *testing.T) {
		s, deps := newTestServer()
		deps.userRepo.On("GetByEmail", mock.Anything, "frank@example.com").Return(account, nil)

		// The account has a success baseline from another address and is
		// already at the failure threshold.
		_, mErr := deps.logins.Mutate(nil, account.ID, func(st *models.LoginState) {
			st.FailedAttempts = 5
			st.HasFingerprint = true
			st.LastIP = "203.0.113.9"
			st.LastDeviceType = "macOS"
			st.LastDeviceID = "device-home"
		})
		require.NoError(t, mErr)

		app := fiber.New()
		app.Post("/auth/login", s.Login)

		send := func(pw string) int {
			req := httptest.NewRequest("POST", "/auth/login", jsonBody(t, fiber.Map{
				"email":    "frank@example.com",
				"password": pw,
			}))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Device-Type", "Linux")
			req.Header.Set("X-Device-ID", "device-unknown")
			resp, err := app.Test(req)
			require.NoError(t, err)
			return resp.StatusCode
		}

		// One more failure from a fully unfamiliar fingerprint trips the lock.
		assert.Equal(t, fiber.StatusUnauthorized, send("nope"))
		// The lock now refuses even the correct password.
		assert.Equal(t, fiber.StatusLocked, send(password))
	})
}
