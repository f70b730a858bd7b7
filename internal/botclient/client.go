// Package botclient is a typed HTTP client for the posts API, used by the
// chat bot.
package botclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postboard/internal/models"
)

// APIError carries the decoded error envelope of a non-2xx response.
type APIError struct {
	StatusCode int
	Response   models.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Error != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Response.Error)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Client talks JSON to the posts API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Response)
		return apiErr
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ListPosts fetches post summaries, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]models.PostSummary, error) {
	query := url.Values{"desc": {"created_at"}}
	var posts []models.PostSummary
	if err := c.do(ctx, http.MethodGet, "/api/posts/", query, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post detail.
func (c *Client) GetPost(ctx context.Context, id uint) (*models.PostDetail, error) {
	var detail models.PostDetail
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreatedUser is the registration response.
type CreatedUser struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// CreateUser registers an account and returns the user with its token.
func (c *Client) CreateUser(ctx context.Context, name, login, password string) (*CreatedUser, error) {
	body := map[string]string{"name": name, "login": login, "password": password}
	var created CreatedUser
	if err := c.do(ctx, http.MethodPost, "/api/users/", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, login, password string) (string, error) {
	body := map[string]string{"login": login, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// DeleteUser removes an account and all its posts.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil, nil)
}

// CreatePost creates a post on behalf of the token's owner.
func (c *Client) CreatePost(ctx context.Context, token, title, text string, authorID uint) (*models.Post, error) {
	query := url.Values{"token": {token}}
	body := map[string]any{"title": title, "text": text, "author": authorID}
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts/", query, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost patches a post's title or text. Nil fields stay unchanged.
func (c *Client) UpdatePost(ctx context.Context, token string, id uint, title, text *string) (*models.Post, error) {
	query := url.Values{"token": {token}}
	body := map[string]any{"id": id}
	if title != nil {
		body["title"] = *title
	}
	if text != nil {
		body["text"] = *text
	}
	var post models.Post
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/posts/%d", id), query, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, token string, id uint) error {
	query := url.Values{"token": {token}}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), query, nil, nil)
}
