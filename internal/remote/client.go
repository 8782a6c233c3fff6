// Package remote implements the HTTP client for the external evaluation
// backend. Loosely-typed backend payloads are decoded here and converted to
// the strict internal models; nothing downstream sees raw JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"konsole/internal/domain"
	"konsole/internal/domain/models"
)

// Client talks to the evaluation backend, attaching the server-held API key
// to every request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. The API key may be empty; calls made
// without one fail with domain.ErrMissingCredential before any request is
// sent.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool { return c.apiKey != "" }

// doJSON performs one backend request and decodes the response body into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body io.Reader, contentType string, out interface{}) error {
	if c.apiKey == "" {
		return domain.ErrMissingCredential
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &domain.NotFoundError{Message: op + ": not found"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the log, then discard
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("backend request failed",
			"op", op,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return &domain.RemoteError{Op: op, Status: resp.StatusCode}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// ListConfigGroups implements domain.ConfigSource.
func (c *Client) ListConfigGroups(ctx context.Context) ([]models.GroupSummary, error) {
	var wire []wireGroup
	if err := c.doJSON(ctx, "list config groups", http.MethodGet, "/v1/configs", nil, "", &wire); err != nil {
		return nil, err
	}

	groups := make([]models.GroupSummary, 0, len(wire))
	for _, g := range wire {
		if g.ID == "" {
			continue // unusable without an id
		}
		groups = append(groups, models.GroupSummary{
			ID:           g.ID,
			Name:         g.Name,
			Description:  g.Description,
			UpdatedAt:    parseTime(g.UpdatedAt),
			VersionCount: g.VersionCount,
		})
	}
	return groups, nil
}

// ListVersions implements domain.ConfigSource.
func (c *Client) ListVersions(ctx context.Context, configID string) ([]models.VersionSummary, error) {
	path := "/v1/configs/" + url.PathEscape(configID) + "/versions"
	var wire []wireVersionSummary
	if err := c.doJSON(ctx, "list versions", http.MethodGet, path, nil, "", &wire); err != nil {
		return nil, err
	}

	versions := make([]models.VersionSummary, 0, len(wire))
	for _, v := range wire {
		versions = append(versions, models.VersionSummary{
			ID:            v.ID,
			Version:       v.Version,
			CommitMessage: v.CommitMessage,
			InsertedAt:    parseTime(v.InsertedAt),
		})
	}
	return versions, nil
}

// GetVersionDetail implements domain.ConfigSource.
func (c *Client) GetVersionDetail(ctx context.Context, configID string, version int) (*models.ConfigVersion, error) {
	path := "/v1/configs/" + url.PathEscape(configID) + "/versions/" + strconv.Itoa(version)
	var wire wireVersionDetail
	if err := c.doJSON(ctx, "get version detail", http.MethodGet, path, nil, "", &wire); err != nil {
		return nil, err
	}
	detail := wire.toModel(configID, version)
	return &detail, nil
}

// CreateConfig implements domain.ConfigWriter.
func (c *Client) CreateConfig(ctx context.Context, req *models.CreateConfigRequest) (*models.GroupSummary, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.RemoteError{Op: "create config", Err: err}
	}

	var wire wireGroup
	if err := c.doJSON(ctx, "create config", http.MethodPost, "/v1/configs", bytes.NewReader(payload), "application/json", &wire); err != nil {
		return nil, err
	}
	return &models.GroupSummary{
		ID:           wire.ID,
		Name:         wire.Name,
		Description:  wire.Description,
		UpdatedAt:    parseTime(wire.UpdatedAt),
		VersionCount: wire.VersionCount,
	}, nil
}

// CreateVersion implements domain.ConfigWriter.
func (c *Client) CreateVersion(ctx context.Context, configID string, req *models.CreateVersionRequest) (*models.ConfigVersion, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.RemoteError{Op: "create version", Err: err}
	}

	path := "/v1/configs/" + url.PathEscape(configID) + "/versions"
	var wire wireVersionDetail
	if err := c.doJSON(ctx, "create version", http.MethodPost, path, bytes.NewReader(payload), "application/json", &wire); err != nil {
		return nil, err
	}
	detail := wire.toModel(configID, wire.Version)
	return &detail, nil
}

// SubmitJob implements domain.JobBackend.
func (c *Client) SubmitJob(ctx context.Context, req *models.SubmitJobRequest) (*models.EvalJob, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.RemoteError{Op: "submit job", Err: err}
	}

	var wire wireJob
	if err := c.doJSON(ctx, "submit job", http.MethodPost, "/v1/jobs", bytes.NewReader(payload), "application/json", &wire); err != nil {
		return nil, err
	}
	job := wire.toModel()
	return &job, nil
}

// GetJob implements domain.JobBackend.
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.EvalJob, error) {
	var wire wireJob
	if err := c.doJSON(ctx, "get job", http.MethodGet, "/v1/jobs/"+url.PathEscape(jobID), nil, "", &wire); err != nil {
		return nil, err
	}
	job := wire.toModel()
	return &job, nil
}

// ListJobResults implements domain.JobBackend.
func (c *Client) ListJobResults(ctx context.Context, jobID string) ([]models.ResultRow, error) {
	path := "/v1/jobs/" + url.PathEscape(jobID) + "/results"
	var wire []wireResultRow
	if err := c.doJSON(ctx, "list job results", http.MethodGet, path, nil, "", &wire); err != nil {
		return nil, err
	}

	rows := make([]models.ResultRow, 0, len(wire))
	for _, r := range wire {
		rows = append(rows, models.ResultRow{
			ExampleID:  r.ExampleID,
			Input:      r.Input,
			Expected:   r.Expected,
			Output:     r.Output,
			Scores:     r.Scores,
			DurationMS: r.DurationMS,
		})
	}
	return rows, nil
}

// UploadDataset implements domain.JobBackend. The dataset file is streamed
// through as one multipart request.
func (c *Client) UploadDataset(ctx context.Context, name, filename string, content io.Reader) (*models.Dataset, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("name", name); err != nil {
		return nil, &domain.RemoteError{Op: "upload dataset", Err: err}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &domain.RemoteError{Op: "upload dataset", Err: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &domain.RemoteError{Op: "upload dataset", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &domain.RemoteError{Op: "upload dataset", Err: err}
	}

	var wire wireDataset
	if err := c.doJSON(ctx, "upload dataset", http.MethodPost, "/v1/datasets", &buf, mw.FormDataContentType(), &wire); err != nil {
		return nil, err
	}
	return &models.Dataset{
		ID:         wire.ID,
		Name:       wire.Name,
		RowCount:   wire.RowCount,
		UploadedAt: parseTime(wire.UploadedAt),
	}, nil
}
