// Package client is the HTTP client for the workspace API. It backs the quill
// CLI's session, autosave and chat components.
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

	"github.com/google/uuid"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	wsSvc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/httputil"
)

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Client talks to the workspace API on behalf of one user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client // overrides Timeout when set
}

// New creates a client for baseURL authenticating with a bearer token.
func New(baseURL, token string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: hc,
	}
}

// APIError is a non-2xx response. It unwraps to the domain sentinel for its status.
type APIError struct {
	Status  int
	Problem httputil.ProblemDetail
	err     error
}

func (e *APIError) Error() string {
	if e.Problem.Detail != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Problem.Title, e.Status, e.Problem.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.Problem.Title, e.Status)
}

func (e *APIError) Unwrap() error { return e.err }

// sentinelFor maps a problem response back onto the domain error it came from.
func sentinelFor(p httputil.ProblemDetail) error {
	switch p.Status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return domain.ErrValidation
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		if p.Extra["reason"] == "published" {
			return domain.ErrPublished
		}
		return domain.ErrConflict
	default:
		return nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		problem := httputil.DecodeProblem(resp)
		return &APIError{Status: resp.StatusCode, Problem: problem, err: sentinelFor(problem)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func path(format string, ids ...string) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}

// Health reports whether the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// Projects

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, req *wsSvc.CreateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodGet, path("/api/projects/%s", projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, path("/api/projects/%s", projectID), nil, nil)
}

// LoadDraft returns the project with its Master document content.
func (c *Client) LoadDraft(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodGet, path("/api/projects/%s/draft", projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) SaveDraft(ctx context.Context, projectID, content string, revision int64) (*wsSvc.SaveResult, error) {
	var result wsSvc.SaveResult
	body := &wsSvc.SaveContentRequest{Content: content, Revision: revision}
	if err := c.do(ctx, http.MethodPut, path("/api/projects/%s/draft", projectID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Publish(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, path("/api/projects/%s/publish", projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) AddCollaborator(ctx context.Context, projectID, userID string) (*models.Project, error) {
	var project models.Project
	body := &wsSvc.AddCollaboratorRequest{UserID: userID}
	if err := c.do(ctx, http.MethodPost, path("/api/projects/%s/collaborators", projectID), body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) RemoveCollaborator(ctx context.Context, projectID, userID string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodDelete, path("/api/projects/%s/collaborators/%s", projectID, userID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Folders and files

func (c *Client) ListFolders(ctx context.Context, projectID string) ([]models.FolderGroup, error) {
	var groups []models.FolderGroup
	if err := c.do(ctx, http.MethodGet, path("/api/projects/%s/folders", projectID), nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) CreateFolder(ctx context.Context, projectID, label string, sharedBase bool) (*models.Folder, error) {
	var folder models.Folder
	body := &wsSvc.CreateFolderRequest{Label: label, SharedBase: sharedBase}
	if err := c.do(ctx, http.MethodPost, path("/api/projects/%s/folders", projectID), body, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	return c.do(ctx, http.MethodDelete, path("/api/folders/%s", folderID), nil, nil)
}

func (c *Client) CreateFile(ctx context.Context, folderID, label string) (*models.File, error) {
	var file models.File
	body := &wsSvc.CreateFileRequest{Label: label}
	if err := c.do(ctx, http.MethodPost, path("/api/folders/%s/files", folderID), body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) LoadFile(ctx context.Context, fileID string) (*models.File, error) {
	var file models.File
	if err := c.do(ctx, http.MethodGet, path("/api/files/%s", fileID), nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) SaveFileContent(ctx context.Context, fileID, content string, revision int64) (*wsSvc.SaveResult, error) {
	var result wsSvc.SaveResult
	body := &wsSvc.SaveContentRequest{Content: content, Revision: revision}
	if err := c.do(ctx, http.MethodPut, path("/api/files/%s/content", fileID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, http.MethodDelete, path("/api/files/%s", fileID), nil, nil)
}

// Chat

func (c *Client) ListMessages(ctx context.Context, projectID string) ([]models.Message, error) {
	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, path("/api/projects/%s/messages", projectID), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, projectID, text string) (*models.Message, error) {
	var message models.Message
	body := &wsSvc.SendMessageRequest{Text: text}
	if err := c.do(ctx, http.MethodPost, path("/api/projects/%s/messages", projectID), body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}
