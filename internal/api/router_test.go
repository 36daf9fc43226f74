package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/muhammedsuhaib/raheel-be/internal/auth"
	"github.com/muhammedsuhaib/raheel-be/internal/config"
	"github.com/muhammedsuhaib/raheel-be/internal/database"
	"github.com/muhammedsuhaib/raheel-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router http.Handler
	users  *services.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	tokens, err := auth.NewTokenService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	userService := services.NewUserService(db)
	taskService := services.NewTaskService(db)

	return &testEnv{
		router: NewRouter(cfg, tokens, userService, taskService),
		users:  userService,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type authResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	Token string `json:"token"`
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	UserID      string `json:"userId"`
}

func (e *testEnv) register(t *testing.T, email, name, password string) authResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":           email,
		"name":            name,
		"password":        password,
		"confirmPassword": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.User.ID)
	return resp
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":           "a@b.com",
		"name":            "A",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a@b.com", resp.User.Email)
	assert.Equal(t, "A", resp.User.Name)
	assert.NotEmpty(t, resp.Token)

	// The password and its hash must never leak into the response.
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	// Immediate duplicate registration conflicts.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":           "a@b.com",
		"name":            "Other",
		"password":        "secret2",
		"confirmPassword": "secret2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	base := map[string]string{
		"email":           "ok@example.com",
		"name":            "OK",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}

	tests := []struct {
		name     string
		mutate   func(m map[string]string)
	}{
		{"mismatched passwords", func(m map[string]string) { m["confirmPassword"] = "different" }},
		{"malformed email", func(m map[string]string) { m["email"] = "not-an-email" }},
		{"empty name", func(m map[string]string) { m["name"] = "" }},
		{"short password", func(m map[string]string) { m["password"] = "abc"; m["confirmPassword"] = "abc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := map[string]string{}
			for k, v := range base {
				payload[k] = v
			}
			tt.mutate(payload)

			rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "login@example.com", "L", "secret1")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "login@example.com", resp.User.Email)
}

func TestLogin_FailureShapeDoesNotLeakExistence(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "known@example.com", "K", "secret1")

	wrongPass := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "known@example.com",
		"password": "wrong-password",
	})
	unknownEmail := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ghost@example.com",
		"password": "secret1",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "me@example.com", "Me", "secret1")

	rec := env.do(t, http.MethodGet, "/api/v1/auth/profile", reg.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token, "profile returns a fresh token")
}

func TestProfile_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile_DeletedUserTokenResolvesToNotFound(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "gone@example.com", "Gone", "secret1")

	rec := env.do(t, http.MethodDelete, "/api/v1/auth/profile", reg.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The token stays cryptographically valid after deletion, but the
	// subject no longer resolves.
	rec = env.do(t, http.MethodGet, "/api/v1/auth/profile", reg.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "old@example.com", "Old", "secret1")

	rec := env.do(t, http.MethodPut, "/api/v1/auth/profile", reg.Token, map[string]string{
		"name": "New Name",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "old@example.com", user.Email)

	// Updating to another account's email conflicts.
	env.register(t, "taken@example.com", "T", "secret1")
	rec = env.do(t, http.MethodPut, "/api/v1/auth/profile", reg.Token, map[string]string{
		"email": "taken@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateTask_Defaults(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "x@example.com", "X", "secret1")

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", reg.Token, map[string]string{
		"title": "Buy milk",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task taskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "medium", task.Priority)
	assert.False(t, task.Completed)
	assert.Equal(t, reg.User.ID, task.UserID)
}

func TestCreateTask_IgnoresClientSuppliedOwner(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "x@example.com", "X", "secret1")

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", reg.Token, map[string]string{
		"title":  "sneaky",
		"userId": "someone-else",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var task taskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, reg.User.ID, task.UserID)
}

func TestCreateTask_Validation(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "x@example.com", "X", "secret1")

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", reg.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing title")

	rec = env.do(t, http.MethodPost, "/api/v1/tasks", reg.Token, map[string]string{
		"title":    "ok",
		"priority": "urgent",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown priority")
}

func TestTasks_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/tasks"},
		{http.MethodPost, "/api/v1/tasks"},
		{http.MethodGet, "/api/v1/tasks/some-id"},
		{http.MethodPut, "/api/v1/tasks/some-id"},
		{http.MethodDelete, "/api/v1/tasks/some-id"},
	} {
		rec := env.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestTasks_CrossUserAccessLooksLikeNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice", "secret1")
	bob := env.register(t, "bob@example.com", "Bob", "secret1")

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", alice.Token, map[string]string{
		"title": "Alice's task",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task taskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	taskPath := fmt.Sprintf("/api/v1/tasks/%s", task.ID)
	missingPath := "/api/v1/tasks/does-not-exist"

	// Bob's responses for Alice's task are identical to those for a task
	// that does not exist at all.
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		cross := env.do(t, method, taskPath, bob.Token, nil)
		missing := env.do(t, method, missingPath, bob.Token, nil)
		assert.Equal(t, http.StatusNotFound, cross.Code, method)
		assert.Equal(t, missing.Body.String(), cross.Body.String(), method)
	}

	cross := env.do(t, http.MethodPut, taskPath, bob.Token, map[string]string{"title": "stolen"})
	assert.Equal(t, http.StatusNotFound, cross.Code)

	// Alice still owns an untouched task.
	rec = env.do(t, http.MethodGet, taskPath, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTasks_ListUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "crud@example.com", "C", "secret1")

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", reg.Token, map[string]string{
		"title": "first",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task taskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = env.do(t, http.MethodGet, "/api/v1/tasks", reg.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []taskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, reg.Token, map[string]interface{}{
		"completed": true,
		"priority":  "high",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated taskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "high", updated.Priority)
	assert.Equal(t, "first", updated.Title)

	rec = env.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID, reg.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/tasks", reg.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}
