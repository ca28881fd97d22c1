package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster-api/internal/api/shared"
	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/mocks"
	"github.com/rosterhq/roster-api/internal/service"
	"github.com/rosterhq/roster-api/internal/service/auth"
)

// testEnv bundles everything a handler test needs: the router with the
// production route shapes, the in-memory store behind the services, and
// the sqlmock controlling transaction expectations.
type testEnv struct {
	router  chi.Router
	users   *mocks.MockUserStore
	tokens  *mocks.MockJWTService
	sqlMock sqlmock.Sqlmock
}

func newAuthTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := mocks.NewMockUserStore()
	hasher := &mocks.MockPasswordHasher{}
	userSvc := service.NewUserService(db, users, users, hasher, nil)
	tokens := &mocks.MockJWTService{Token: "access-token", RefreshToken: "refresh-token"}
	authSvc := service.NewAuthService(users, userSvc, hasher, tokens, nil)
	h := NewAuthHandler(authSvc, nil)

	r := chi.NewRouter()
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/refresh", h.RefreshToken)

	return &testEnv{router: r, users: users, tokens: tokens, sqlMock: mock}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (shared.Envelope, json.RawMessage) {
	t.Helper()
	var env struct {
		Success   bool            `json:"success"`
		Message   string          `json:"message"`
		Data      json.RawMessage `json:"data"`
		Timestamp string          `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return shared.Envelope{
		Success:   env.Success,
		Message:   env.Message,
		Timestamp: env.Timestamp,
	}, env.Data
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorBody {
	t.Helper()
	var body shared.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerBody() map[string]any {
	return map[string]any{
		"full_name": "Bui Van Manh",
		"email":     "manh@example.com",
		"password":  "password123",
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Parallel()

	t.Run("valid registration returns 201 with a token pair", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.sqlMock.ExpectBegin()
		env.sqlMock.ExpectCommit()

		rec := env.do(t, http.MethodPost, "/api/auth/register", registerBody())
		require.Equal(t, http.StatusCreated, rec.Code)

		envelope, data := decodeEnvelope(t, rec)
		assert.True(t, envelope.Success)
		assert.NotEmpty(t, envelope.Timestamp)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "access-token", resp.Token)
		assert.Equal(t, "manhbv1", resp.User.Username)
		assert.Equal(t, "USER", resp.User.Role)
	})

	t.Run("requested admin role is ignored", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.sqlMock.ExpectBegin()
		env.sqlMock.ExpectCommit()

		body := registerBody()
		body["role"] = "ADMIN"
		rec := env.do(t, http.MethodPost, "/api/auth/register", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		_, data := decodeEnvelope(t, rec)
		var resp struct {
			User struct {
				Role string `json:"role"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "USER", resp.User.Role)
	})

	t.Run("malformed JSON returns 400 BAD_REQUEST", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeErrorBody(t, rec)
		assert.Equal(t, CodeBadRequest, body.ErrorCode)
		assert.Equal(t, "/api/auth/register", body.Path)
		assert.Equal(t, http.StatusText(http.StatusBadRequest), body.Error)
	})

	t.Run("missing fields return 400 VALIDATION_FAILED with details", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
			"full_name": "Bui Van Manh",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeErrorBody(t, rec)
		assert.Equal(t, CodeValidationFailed, body.ErrorCode)
		assert.NotEmpty(t, body.Details)
	})

	t.Run("duplicate email returns 400", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.sqlMock.ExpectBegin()
		env.sqlMock.ExpectRollback()

		rec := env.do(t, http.MethodPost, "/api/auth/register", registerBody())
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeBadRequest, decodeErrorBody(t, rec).ErrorCode)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials return 200", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		seedActiveUser(t, env.users, "manh@example.com", "manhbv1")

		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
			"username": "manhbv1",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		envelope, data := decodeEnvelope(t, rec)
		assert.True(t, envelope.Success)

		var resp struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "access-token", resp.Token)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
	})

	t.Run("wrong password returns 401 UNAUTHORIZED", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		seedActiveUser(t, env.users, "manh@example.com", "manhbv1")

		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
			"username": "manhbv1",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeUnauthorized, decodeErrorBody(t, rec).ErrorCode)
	})

	t.Run("unknown username returns the same 401", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
			"username": "nobody",
			"password": "password123",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeUnauthorized, decodeErrorBody(t, rec).ErrorCode)
	})

	t.Run("missing password returns 400 VALIDATION_FAILED", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
			"username": "manhbv1",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeValidationFailed, decodeErrorBody(t, rec).ErrorCode)
	})
}

func TestAuthHandlerRefresh(t *testing.T) {
	t.Parallel()

	t.Run("invalid refresh token returns 401", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.tokens.ValidateErr = auth.ErrInvalidRefreshToken

		rec := env.do(t, http.MethodPost, "/api/auth/refresh", map[string]any{
			"refresh_token": "garbage",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeUnauthorized, decodeErrorBody(t, rec).ErrorCode)
	})

	t.Run("missing token returns 400 VALIDATION_FAILED", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/auth/refresh", map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeValidationFailed, decodeErrorBody(t, rec).ErrorCode)
	})
}

// seedActiveUser inserts a ready-made active user whose password is
// "password123" under the mock hasher.
func seedActiveUser(t *testing.T, users *mocks.MockUserStore, email, username string) *domain.User {
	t.Helper()
	u, err := domain.NewUser("Bui Van Manh", email, username, "password123", domain.RoleUser)
	require.NoError(t, err)
	u.HashedPassword = "hashed:password123"
	u.Password = ""
	users.Seed(u)
	return u
}
