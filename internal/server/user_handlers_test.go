package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	app := newTestApp(t)

	t.Run("Returns the user and token once", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/users/", map[string]string{
			"name": "Alice", "login": "alice", "password": "secret",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, body["token"])

		user := body["user"].(map[string]any)
		assert.Equal(t, "Alice", user["name"])
		// Credentials never serialize
		_, hasPassword := user["password"]
		_, hasToken := user["token"]
		assert.False(t, hasPassword)
		assert.False(t, hasToken)
	})

	t.Run("Duplicate name and login conflicts", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/users/", map[string]string{
			"name": "Alice", "login": "alice", "password": "other",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", body["code"])
	})

	t.Run("Missing password is rejected", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/users/", map[string]string{
			"name": "Bob", "login": "bob",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("Malformed body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/", nil)
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	_, issued := signup(t, app, "Alice", "alice")

	t.Run("Valid credentials return the stored token", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/users/login", map[string]string{
			"login": "alice", "password": "secret",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, issued, body["token"])
	})

	t.Run("Wrong password is unauthorized", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/users/login", map[string]string{
			"login": "alice", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Missing fields are rejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/users/login", map[string]string{
			"login": "alice",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetUser(t *testing.T) {
	app := newTestApp(t)
	id, _ := signup(t, app, "Alice", "alice")

	t.Run("Returns the public profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/1", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var user map[string]any
		require.NoError(t, json.Unmarshal(raw, &user))
		assert.Equal(t, float64(id), user["id"])
		assert.Equal(t, "Alice", user["name"])
		_, hasToken := user["token"]
		assert.False(t, hasToken)
	})

	t.Run("Unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/999", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/abc", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteUser(t *testing.T) {
	app := newTestApp(t)
	id, token := signup(t, app, "Alice", "alice")

	// Give the user a post so the cascade is observable.
	resp, body := doJSON(t, app, http.MethodPost, "/api/posts/?token="+token, map[string]any{
		"title": "Hello", "text": "body", "author": id,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := int(body["id"].(float64))

	t.Run("Removes the user and their posts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/users/1", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		req = httptest.NewRequest(http.MethodGet, "/api/users/1", nil)
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		req = httptest.NewRequest(http.MethodGet, "/api/posts/"+strconv.Itoa(postID), nil)
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/users/999", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
