package movieapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glefebvre/moviedesk/internal/errors"
	"github.com/glefebvre/moviedesk/internal/logger"
	"github.com/glefebvre/moviedesk/internal/models"
)

type observation struct {
	operation string
	outcome   string
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveRequest(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{operation, outcome})
}

func newTestClient(serverURL string, obs *recordingObserver) *Client {
	cfg := Config{
		BaseURL: serverURL + "/movieapi",
		Timeout: 5 * time.Second,
		Logger:  logger.Discard(),
	}
	if obs != nil {
		cfg.Observer = obs
	}
	return New(cfg)
}

func TestNew(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost:8080/movieapi/"})

	if client == nil {
		t.Fatal("expected non-nil client")
	}
	if client.BaseURL() != "http://localhost:8080/movieapi" {
		t.Errorf("expected trailing slash to be trimmed, got %s", client.BaseURL())
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", client.httpClient.Timeout)
	}
}

func TestListAll(t *testing.T) {
	movies := []models.Movie{
		{ID: 1, Title: "Alpha", Director: "A", Year: 2020, Genre: "Drama", Rating: 3, Duration: 100},
		{ID: 2, Title: "Zeta", Director: "Z", Year: 2001, Genre: "Action", Rating: 5, Duration: 95},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got %s", r.Method)
		}
		if r.URL.Path != "/movieapi/all" {
			t.Errorf("expected path /movieapi/all, got %s", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(movies)
	}))
	defer server.Close()

	obs := &recordingObserver{}
	client := newTestClient(server.URL, obs)

	result, err := client.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(result))
	}
	if result[1] != movies[1] {
		t.Errorf("expected %+v, got %+v", movies[1], result[1])
	}
	if len(obs.seen) != 1 || obs.seen[0] != (observation{OpListAll, "success"}) {
		t.Errorf("unexpected observations: %+v", obs.seen)
	}
}

func TestListAll_EmptyArrayAndNull(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		result, err := newTestClient(server.URL, nil).ListAll(context.Background())
		server.Close()

		if err != nil {
			t.Fatalf("body %s: unexpected error: %v", body, err)
		}
		if result == nil || len(result) != 0 {
			t.Errorf("body %s: expected empty non-nil slice, got %#v", body, result)
		}
	}
}

func TestListAll_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	obs := &recordingObserver{}
	_, err := newTestClient(server.URL, obs).ListAll(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.GetErrorCode(err) != errors.CodeExternalService {
		t.Errorf("expected external service error, got %s", errors.GetErrorCode(err))
	}
	if !strings.Contains(err.Error(), "unexpected status code 500") {
		t.Errorf("expected status in error, got %v", err)
	}
	if len(obs.seen) != 1 || obs.seen[0].outcome != "error" {
		t.Errorf("expected one error observation, got %+v", obs.seen)
	}
}

func TestListAll_BodyTooLarge(t *testing.T) {
	body := "[" + strings.Repeat(" ", maxBodyBytes) + "]"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, nil).ListAll(context.Background())
	if err == nil {
		t.Fatal("expected size error, got nil")
	}
	if !strings.Contains(err.Error(), "response too large") {
		t.Errorf("expected size error, got %v", err)
	}
	if strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("oversized body must not be decoded, got %v", err)
	}
}

func TestListAll_BodyAtLimit(t *testing.T) {
	body := "[" + strings.Repeat(" ", maxBodyBytes-2) + "]"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, nil).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no movies, got %d", len(result))
	}
}

func TestListAll_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, nil).ListAll(context.Background())
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestAdd(t *testing.T) {
	movie := models.Movie{ID: 9, Title: "Heat", Director: "Michael Mann", Year: 1995, Genre: "Drama", Rating: 8.3, Duration: 170}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/movieapi/add" {
			t.Errorf("expected path /movieapi/add, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
		}

		var received models.Movie
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if received != movie {
			t.Errorf("expected %+v, got %+v", movie, received)
		}

		json.NewEncoder(w).Encode(received)
	}))
	defer server.Close()

	if err := newTestClient(server.URL, nil).Add(context.Background(), movie); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	movie := models.Movie{ID: 4, Title: "Up", Director: "Pete Docter", Year: 2009, Genre: "Comedy", Rating: 8.2, Duration: 96}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT method, got %s", r.Method)
		}
		if r.URL.Path != "/movieapi/update" {
			t.Errorf("expected path /movieapi/update, got %s", r.URL.Path)
		}

		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if raw["id"] != float64(4) {
			t.Errorf("expected id 4 in body, got %v", raw["id"])
		}
		for _, f := range models.Fields {
			if _, ok := raw[f.Key()]; !ok {
				t.Errorf("expected key %q in body", f.Key())
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := newTestClient(server.URL, nil).Update(context.Background(), movie); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := newTestClient(server.URL, nil).Update(context.Background(), models.Movie{ID: 1})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Context["operation"] != OpUpdate {
		t.Errorf("expected operation context %q, got %v", OpUpdate, appErr.Context["operation"])
	}
	if appErr.Context["movie_id"] != 1 {
		t.Errorf("expected movie_id context 1, got %v", appErr.Context["movie_id"])
	}
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE method, got %s", r.Method)
		}
		if r.URL.Path != "/movieapi/delete/12" {
			t.Errorf("expected path /movieapi/delete/12, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Movie deleted with id: 12\n"))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL, nil).Delete(context.Background(), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Movie deleted with id: 12" {
		t.Errorf("expected confirmation text, got %q", text)
	}
}

func TestGetByID(t *testing.T) {
	movie := models.Movie{ID: 3, Title: "Alien", Director: "Ridley Scott", Year: 1979, Genre: "Sci-Fi", Rating: 8.5, Duration: 117}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movieapi/get/3" {
			t.Errorf("expected path /movieapi/get/3, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(movie)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, nil).GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *result != movie {
		t.Errorf("expected %+v, got %+v", movie, *result)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"null body", http.StatusOK, "null"},
		{"empty body", http.StatusOK, ""},
		{"404 status", http.StatusNotFound, "no such movie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result, err := newTestClient(server.URL, nil).GetByID(context.Background(), 42)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if result != nil {
				t.Errorf("expected nil movie, got %+v", result)
			}
			if !errors.IsNotFound(err) {
				t.Errorf("expected not found error, got %v", err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movieapi/" {
			t.Errorf("expected path /movieapi/, got %s", r.URL.Path)
		}
		w.Write([]byte("Welcome"))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL, nil).Ping(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Welcome" {
		t.Errorf("expected 'Welcome', got %q", text)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(Config{
		BaseURL: server.URL + "/movieapi",
		Timeout: 50 * time.Millisecond,
		Logger:  logger.Discard(),
	})

	_, err := client.ListAll(context.Background())
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "SERVICE_TIMEOUT") {
		t.Errorf("expected timeout code in error chain, got %v", err)
	}
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, nil).ListAll(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.GetErrorCode(err) != errors.CodeExternalService {
		t.Errorf("expected external service error, got %s", errors.GetErrorCode(err))
	}
}
