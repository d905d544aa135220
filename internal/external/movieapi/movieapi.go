package movieapi

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glefebvre/moviedesk/internal/errors"
	"github.com/glefebvre/moviedesk/internal/logger"
	"github.com/glefebvre/moviedesk/internal/metrics"
	"github.com/glefebvre/moviedesk/internal/models"
)

const (
	serviceName = "movieapi"

	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 4 << 20
)

// Operation names used for logging and metrics
const (
	OpPing    = "ping"
	OpListAll = "list_all"
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpGetByID = "get_by_id"
)

// Client talks to the movie backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   metrics.Observer
	log        *logger.Logger
}

// Config holds movie backend client configuration
type Config struct {
	// BaseURL includes the API base path, e.g. http://localhost:8080/movieapi
	BaseURL    string
	Timeout    time.Duration
	Observer   metrics.Observer
	Logger     *logger.Logger
	HTTPClient *http.Client
}

// New creates a new movie backend client
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Observer == nil {
		cfg.Observer = metrics.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.HTTPLogger()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		observer:   cfg.Observer,
		log:        cfg.Logger,
	}
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping fetches the backend welcome text
func (c *Client) Ping(ctx context.Context) (string, error) {
	body, err := c.do(ctx, OpPing, http.MethodGet, "/", nil)
	if err != nil {
		return "", wrap(OpPing, "failed to reach backend", err)
	}
	return strings.TrimSpace(string(body)), nil
}

// ListAll retrieves every movie
func (c *Client) ListAll(ctx context.Context) ([]models.Movie, error) {
	body, err := c.do(ctx, OpListAll, http.MethodGet, "/all", nil)
	if err != nil {
		return nil, wrap(OpListAll, "failed to list movies", err)
	}

	var movies []models.Movie
	if err := json.Unmarshal(body, &movies); err != nil {
		return nil, wrap(OpListAll, "failed to list movies", decodeError(err))
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return movies, nil
}

// Add creates a movie
func (c *Client) Add(ctx context.Context, movie models.Movie) error {
	if _, err := c.do(ctx, OpAdd, http.MethodPost, "/add", movie); err != nil {
		return wrap(OpAdd, "failed to add movie", err).WithContext("movie_id", movie.ID)
	}
	return nil
}

// Update replaces the movie identified by movie.ID
func (c *Client) Update(ctx context.Context, movie models.Movie) error {
	if _, err := c.do(ctx, OpUpdate, http.MethodPut, "/update", movie); err != nil {
		return wrap(OpUpdate, "failed to update movie", err).WithContext("movie_id", movie.ID)
	}
	return nil
}

// Delete removes a movie and returns the backend's confirmation text
func (c *Client) Delete(ctx context.Context, id int) (string, error) {
	body, err := c.do(ctx, OpDelete, http.MethodDelete, "/delete/"+strconv.Itoa(id), nil)
	if err != nil {
		return "", wrap(OpDelete, "failed to delete movie", err).WithContext("movie_id", id)
	}
	return strings.TrimSpace(string(body)), nil
}

// GetByID retrieves a single movie. The backend answers unknown ids with an
// empty or null body, which is reported as a not found error.
func (c *Client) GetByID(ctx context.Context, id int) (*models.Movie, error) {
	body, err := c.do(ctx, OpGetByID, http.MethodGet, "/get/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, wrap(OpGetByID, "failed to get movie", err).WithContext("movie_id", id)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, wrap(OpGetByID, "failed to get movie",
			errors.NotFoundError("movie", strconv.Itoa(id))).WithContext("movie_id", id)
	}

	var movie models.Movie
	if err := json.Unmarshal(trimmed, &movie); err != nil {
		return nil, wrap(OpGetByID, "failed to get movie", decodeError(err)).WithContext("movie_id", id)
	}
	return &movie, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body interface{}) ([]byte, error) {
	requestID := uuid.New().String()
	ctx = logger.ContextWithRequestID(ctx, requestID)
	ctx = logger.ContextWithOperation(ctx, op)

	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", requestID)

	fields := map[string]interface{}{
		"method": method,
		"url":    req.URL.String(),
	}
	c.log.WithFields(fields).DebugContext(ctx, "sending backend request")

	start := time.Now()
	data, err := c.send(req)
	elapsed := time.Since(start)
	fields["elapsed_ms"] = float64(elapsed.Nanoseconds()) / 1e6

	if err != nil {
		c.observer.ObserveRequest(op, metrics.OutcomeError, elapsed)
		c.log.WithFields(fields).WarnContext(ctx, "backend request failed: "+err.Error())
		return nil, err
	}

	c.observer.ObserveRequest(op, metrics.OutcomeSuccess, elapsed)
	c.log.WithFields(fields).DebugContext(ctx, "backend request completed")
	return data, nil
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
			return nil, errors.Wrap(err, errors.CodeServiceTimeout, "request timed out")
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxBodyBytes {
		return nil, errors.New(errors.CodeMalformedResponse, "response too large").
			WithContext("limit_bytes", maxBodyBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	url := c.baseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/plain")

	return req, nil
}

func statusError(status int, body []byte) error {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	err := fmt.Errorf("unexpected status code %d: %s", status, excerpt)

	switch {
	case status == http.StatusNotFound:
		return errors.Wrap(err, errors.CodeNotFound, "resource not found")
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway:
		return errors.Wrap(err, errors.CodeServiceUnavailable, "backend unavailable")
	case status == http.StatusGatewayTimeout:
		return errors.Wrap(err, errors.CodeServiceTimeout, "backend timed out")
	}
	return err
}

func decodeError(err error) error {
	return errors.Wrap(err, errors.CodeMalformedResponse, "failed to decode response")
}

func wrap(op, message string, err error) *errors.AppError {
	return errors.ExternalServiceError(serviceName, message, err).WithContext("operation", op)
}
