package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/netx"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

type HTTPClient struct {
	base        *url.URL
	http        *http.Client
	accessToken string
}

// NewHTTPClient returns a client for the API rooted at baseURL. A zero
// timeout means no per-request limit beyond the caller's context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q: missing host", baseURL)
	}
	return &HTTPClient{base: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.accessToken = token
}

func (c *HTTPClient) endpoint(elem ...string) string {
	escaped := make([]string, len(elem))
	for i, e := range elem {
		escaped[i] = url.PathEscape(e)
	}
	return c.base.JoinPath(escaped...).String()
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if netx.IsUnreachable(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, endpoint, body, contentType, out)
}

// decodeError reads {"detail": ...}. The detail is usually a string but is
// kept verbatim when the server sends a structured value.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		apiErr.Detail = s
	} else {
		apiErr.Detail = string(payload.Detail)
	}
	return apiErr
}

// Health returns nil when the server reports itself healthy.
func (c *HTTPClient) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("health"), nil, &out); err != nil {
		return err
	}
	if out.Status != "healthy" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, out.Status)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, email string, name *string, password []byte) (*models.Token, error) {
	in := struct {
		Email    string  `json:"email"`
		Name     *string `json:"name,omitempty"`
		Password string  `json:"password"`
	}{Email: email, Name: name, Password: string(password)}

	var tok models.Token
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("auth", "register"), in, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login posts the credentials form-encoded, the way the login endpoint expects.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.Token, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", string(password))

	var tok models.Token
	err := c.do(ctx, http.MethodPost, c.endpoint("auth", "login"),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("auth", "me"), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("users", "tasks"), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, in models.NewTask) (*models.Task, error) {
	return c.taskCall(ctx, http.MethodPost, c.endpoint("users", "tasks"), in)
}

func (c *HTTPClient) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return c.taskCall(ctx, http.MethodGet, c.endpoint("users", "tasks", id), nil)
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	return c.taskCall(ctx, http.MethodPut, c.endpoint("users", "tasks", id), patch)
}

func (c *HTTPClient) ToggleTask(ctx context.Context, id string) (*models.Task, error) {
	return c.taskCall(ctx, http.MethodPatch, c.endpoint("users", "tasks", id, "toggle"), nil)
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("users", "tasks", id), nil, nil)
}

func (c *HTTPClient) taskCall(ctx context.Context, method, endpoint string, in any) (*models.Task, error) {
	var t models.Task
	if err := c.doJSON(ctx, method, endpoint, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// IsAuthError reports whether err means the cached token is no longer accepted.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
