package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster-api/internal/api/shared"
	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/mocks"
	"github.com/rosterhq/roster-api/internal/platform/storage"
	"github.com/rosterhq/roster-api/internal/service"
)

type userTestEnv struct {
	router    chi.Router
	users     *mocks.MockUserStore
	sqlMock   sqlmock.Sqlmock
	uploadDir string

	// callerID/callerRole are injected into the request context the way
	// the authentication middleware would. Zero callerID means no
	// authenticated user.
	callerID   uuid.UUID
	callerRole domain.Role
}

func newUserTestEnv(t *testing.T) *userTestEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := mocks.NewMockUserStore()
	userSvc := service.NewUserService(db, users, users, &mocks.MockPasswordHasher{}, nil)

	uploadDir := t.TempDir()
	avatars, err := storage.NewLocalStore(uploadDir, 1<<20, nil)
	require.NoError(t, err)

	h := NewUserHandler(userSvc, avatars, nil)

	env := &userTestEnv{
		users:      users,
		sqlMock:    mock,
		uploadDir:  uploadDir,
		callerRole: domain.RoleUser,
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if env.callerID != uuid.Nil {
				ctx := shared.WithUser(req.Context(), env.callerID, env.callerRole)
				req = req.WithContext(ctx)
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/by-role/{role}", h.ListByRole)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.SoftDelete)
		r.Delete("/{id}/permanent", h.HardDelete)
		r.Put("/{id}/password", h.ChangePassword)
		r.Put("/{id}/avatar", h.UploadAvatar)
	})
	env.router = r
	return env
}

func (e *userTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
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

func TestUserHandlerGet(t *testing.T) {
	t.Parallel()

	t.Run("users can read their own account", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = u.ID

		rec := env.do(t, http.MethodGet, "/api/users/"+u.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		_, data := decodeEnvelope(t, rec)
		var got struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "manhbv1", got.Username)
		assert.Equal(t, "manh@example.com", got.Email)
		assert.Empty(t, got.Password)
	})

	t.Run("admins can read any account", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = uuid.New()
		env.callerRole = domain.RoleAdmin

		rec := env.do(t, http.MethodGet, "/api/users/"+u.ID.String(), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("users cannot read other accounts", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = uuid.New()

		rec := env.do(t, http.MethodGet, "/api/users/"+u.ID.String(), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeForbidden, decodeErrorBody(t, rec).ErrorCode)
	})

	t.Run("unknown id returns 404 NOT_FOUND", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		env.callerID = uuid.New()
		env.callerRole = domain.RoleAdmin

		rec := env.do(t, http.MethodGet, "/api/users/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeErrorBody(t, rec)
		assert.Equal(t, CodeNotFound, body.ErrorCode)
		assert.Equal(t, http.StatusNotFound, body.Status)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)

		rec := env.do(t, http.MethodGet, "/api/users/not-a-uuid", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeBadRequest, decodeErrorBody(t, rec).ErrorCode)
	})

	t.Run("soft-deleted user is not found", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		u.Active = false
		env.users.Seed(u)
		env.callerID = u.ID

		rec := env.do(t, http.MethodGet, "/api/users/"+u.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserHandlerCreate(t *testing.T) {
	t.Parallel()

	env := newUserTestEnv(t)
	env.sqlMock.ExpectBegin()
	env.sqlMock.ExpectCommit()

	rec := env.do(t, http.MethodPost, "/api/users", map[string]any{
		"full_name": "Nguyen Thi Lan",
		"email":     "lan@example.com",
		"password":  "password123",
		"role":      "ADMIN",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	_, data := decodeEnvelope(t, rec)
	var got struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "lannt1", got.Username)
	assert.Equal(t, "ADMIN", got.Role)
}

func TestUserHandlerList(t *testing.T) {
	t.Parallel()

	t.Run("pages through active users", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		seedActiveUser(t, env.users, "a@example.com", "usera")
		seedActiveUser(t, env.users, "b@example.com", "userb")

		rec := env.do(t, http.MethodGet, "/api/users?pageNo=0&pageSize=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		_, data := decodeEnvelope(t, rec)
		var page struct {
			Content       []json.RawMessage `json:"content"`
			PageNo        int               `json:"pageNo"`
			PageSize      int               `json:"pageSize"`
			TotalElements int64             `json:"totalElements"`
			TotalPages    int               `json:"totalPages"`
			First         bool              `json:"first"`
			Last          bool              `json:"last"`
		}
		require.NoError(t, json.Unmarshal(data, &page))
		assert.Len(t, page.Content, 2)
		assert.Equal(t, int64(2), page.TotalElements)
		assert.Equal(t, 1, page.TotalPages)
		assert.True(t, page.First)
		assert.True(t, page.Last)
	})

	t.Run("empty result keeps content as an array", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)

		rec := env.do(t, http.MethodGet, "/api/users", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"content":[]`)
	})

	t.Run("bad active parameter returns 400", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)

		rec := env.do(t, http.MethodGet, "/api/users?active=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserHandlerUpdate(t *testing.T) {
	t.Parallel()

	env := newUserTestEnv(t)
	u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
	env.sqlMock.ExpectBegin()
	env.sqlMock.ExpectCommit()

	rec := env.do(t, http.MethodPut, "/api/users/"+u.ID.String(), map[string]any{
		"school": "HUST",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, data := decodeEnvelope(t, rec)
	var got struct {
		FullName string `json:"full_name"`
		School   string `json:"school"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "HUST", got.School)
	assert.Equal(t, "Bui Van Manh", got.FullName)
}

func TestUserHandlerDelete(t *testing.T) {
	t.Parallel()

	t.Run("soft delete hides the user from reads", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")

		rec := env.do(t, http.MethodDelete, "/api/users/"+u.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/users/"+u.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("permanent delete removes the row", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")

		rec := env.do(t, http.MethodDelete, "/api/users/"+u.ID.String()+"/permanent", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodDelete, "/api/users/"+u.ID.String()+"/permanent", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserHandlerChangePassword(t *testing.T) {
	t.Parallel()

	passwordBody := map[string]any{
		"current_password": "password123",
		"new_password":     "newpassword456",
	}

	t.Run("owner can change their password", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = u.ID
		env.sqlMock.ExpectBegin()
		env.sqlMock.ExpectCommit()

		rec := env.do(t, http.MethodPut, "/api/users/"+u.ID.String()+"/password", passwordBody)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("another user is forbidden", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = uuid.New()

		rec := env.do(t, http.MethodPut, "/api/users/"+u.ID.String()+"/password", passwordBody)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeForbidden, decodeErrorBody(t, rec).ErrorCode)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")

		rec := env.do(t, http.MethodPut, "/api/users/"+u.ID.String()+"/password", passwordBody)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeUnauthorized, decodeErrorBody(t, rec).ErrorCode)
	})

	t.Run("wrong current password returns 400", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = u.ID
		env.sqlMock.ExpectBegin()
		env.sqlMock.ExpectRollback()

		rec := env.do(t, http.MethodPut, "/api/users/"+u.ID.String()+"/password", map[string]any{
			"current_password": "wrong",
			"new_password":     "newpassword456",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeBadRequest, decodeErrorBody(t, rec).ErrorCode)
	})
}

func TestUserHandlerListByRole(t *testing.T) {
	t.Parallel()

	t.Run("returns users holding the role", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		seedActiveUser(t, env.users, "manh@example.com", "manhbv1")

		rec := env.do(t, http.MethodGet, "/api/users/by-role/USER", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		_, data := decodeEnvelope(t, rec)
		var got []json.RawMessage
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Len(t, got, 1)
	})

	t.Run("unknown role returns 400", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)

		rec := env.do(t, http.MethodGet, "/api/users/by-role/ROOT", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserHandlerUploadAvatar(t *testing.T) {
	t.Parallel()

	avatarRequest := func(t *testing.T, id uuid.UUID, filename string, content []byte) *http.Request {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("avatar", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/users/"+id.String()+"/avatar", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	t.Run("stores the file and updates the user", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = u.ID
		env.sqlMock.ExpectBegin()
		env.sqlMock.ExpectCommit()

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, u.ID, "photo.png", []byte("png-bytes")))
		require.Equal(t, http.StatusOK, rec.Code)

		_, data := decodeEnvelope(t, rec)
		var got struct {
			AvatarPath string `json:"avatar_path"`
		}
		require.NoError(t, json.Unmarshal(data, &got))
		require.NotEmpty(t, got.AvatarPath)

		saved, err := os.ReadFile(filepath.Join(env.uploadDir, got.AvatarPath))
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), saved)
	})

	t.Run("another user's avatar cannot be replaced", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = uuid.New()

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, u.ID, "photo.png", []byte("png-bytes")))
		require.Equal(t, http.StatusForbidden, rec.Code)

		entries, err := os.ReadDir(env.uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("unsupported extension returns 400", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = u.ID

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, u.ID, "payload.exe", []byte("nope")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file returns 400", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		u := seedActiveUser(t, env.users, "manh@example.com", "manhbv1")
		env.callerID = u.ID

		rec := env.do(t, http.MethodPut, "/api/users/"+u.ID.String()+"/avatar", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upload for an unknown user removes the orphaned file", func(t *testing.T) {
		t.Parallel()
		env := newUserTestEnv(t)
		env.callerID = uuid.New()
		env.callerRole = domain.RoleAdmin
		env.sqlMock.ExpectBegin()
		env.sqlMock.ExpectRollback()

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, uuid.New(), "photo.png", []byte("png-bytes")))
		require.Equal(t, http.StatusNotFound, rec.Code)

		entries, err := os.ReadDir(env.uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
