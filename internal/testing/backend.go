package testing

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glefebvre/moviedesk/internal/logger"
	"github.com/glefebvre/moviedesk/internal/models"
)

// Route names used for hit counting and fault injection
const (
	RouteWelcome = "GET /"
	RouteAll     = "GET /all"
	RouteAdd     = "POST /add"
	RouteUpdate  = "PUT /update"
	RouteDelete  = "DELETE /delete"
	RouteGet     = "GET /get"
)

// DefaultBasePath is where the movie routes are mounted
const DefaultBasePath = "/movieapi"

// Backend is an in-process movie backend backed by an in-memory sqlite store.
// It answers like the real service: add and update upsert, delete always
// confirms, and unknown ids read back as a null body.
type Backend struct {
	// URL is the server root, BaseURL includes the base path
	URL     string
	BaseURL string

	db     *gorm.DB
	server *httptest.Server
	log    *logger.Logger

	mu     sync.Mutex
	hits   map[string]int
	faults map[string]int
	gates  map[string]*Gate
}

// BackendOption customizes a Backend
type BackendOption func(*backendOptions)

type backendOptions struct {
	basePath string
	logger   *logger.Logger
	seed     []models.Movie
}

// WithBasePath mounts the routes under a different path
func WithBasePath(path string) BackendOption {
	return func(o *backendOptions) {
		o.basePath = path
	}
}

// WithBackendLogger sends backend and store logs to l
func WithBackendLogger(l *logger.Logger) BackendOption {
	return func(o *backendOptions) {
		o.logger = l
	}
}

// WithMovies seeds the store before the server starts
func WithMovies(movies ...models.Movie) BackendOption {
	return func(o *backendOptions) {
		o.seed = append(o.seed, movies...)
	}
}

// NewBackend starts a fake backend that is shut down with the test
func NewBackend(t *testing.T, opts ...BackendOption) *Backend {
	t.Helper()

	o := backendOptions{basePath: DefaultBasePath, logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Backend{
		db:     TestDB(t, WithStoreLogger(o.logger)),
		log:    o.logger,
		hits:   make(map[string]int),
		faults: make(map[string]int),
		gates:  make(map[string]*Gate),
	}
	if len(o.seed) > 0 {
		b.Seed(t, o.seed...)
	}

	b.server = httptest.NewServer(b.router(o.basePath))
	t.Cleanup(func() {
		b.releaseGates()
		b.server.Close()
	})

	b.URL = b.server.URL
	b.BaseURL = b.server.URL + o.basePath
	return b
}

func (b *Backend) router(basePath string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(requestIDMiddleware(), recoveryMiddleware(b.log), accessLogMiddleware(b.log))

	api := r.Group(basePath)
	{
		api.GET("/", b.route(RouteWelcome, b.welcome))
		api.GET("/all", b.route(RouteAll, b.listAll))
		api.POST("/add", b.route(RouteAdd, b.save))
		api.PUT("/update", b.route(RouteUpdate, b.save))
		api.DELETE("/delete/:id", b.route(RouteDelete, b.delete))
		api.GET("/get/:id", b.route(RouteGet, b.get))
	}
	return r
}

// route counts the hit, applies an injected fault or gate, then runs h
func (b *Backend) route(name string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.hits[name]++
		status, faulty := b.faults[name]
		gate := b.gates[name]
		b.mu.Unlock()

		if gate != nil {
			gate.wait(c.Request.Context().Done())
		}
		if faulty {
			c.String(status, "injected failure")
			return
		}
		h(c)
	}
}

func (b *Backend) welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome")
}

func (b *Backend) listAll(c *gin.Context) {
	movies := make([]models.Movie, 0)
	if err := b.db.WithContext(c.Request.Context()).Order("id").Find(&movies).Error; err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (b *Backend) save(c *gin.Context) {
	var movie models.Movie
	if err := c.ShouldBindJSON(&movie); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	err := b.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&movie).Error
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (b *Backend) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return
	}

	if err := b.db.WithContext(c.Request.Context()).Delete(&models.Movie{}, id).Error; err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.String(http.StatusOK, "Movie deleted with id: %d", id)
}

func (b *Backend) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid id")
		return
	}

	var movie models.Movie
	err = b.db.WithContext(c.Request.Context()).First(&movie, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, movie)
}

// Seed stores movies directly, bypassing the HTTP routes
func (b *Backend) Seed(t *testing.T, movies ...models.Movie) {
	t.Helper()
	for i := range movies {
		if err := b.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&movies[i]).Error; err != nil {
			t.Fatalf("failed to seed movie %d: %v", movies[i].ID, err)
		}
	}
}

// Movies returns the stored movies ordered by id
func (b *Backend) Movies(t *testing.T) []models.Movie {
	t.Helper()
	var movies []models.Movie
	if err := b.db.Order("id").Find(&movies).Error; err != nil {
		t.Fatalf("failed to read movies: %v", err)
	}
	return movies
}

// DB exposes the backing store
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Hits returns how many requests reached a route
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// TotalHits returns the number of requests across all routes
func (b *Backend) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.hits {
		total += n
	}
	return total
}

// Fail makes a route answer with status until Heal is called
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[route] = status
}

// Heal removes an injected fault
func (b *Backend) Heal(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.faults, route)
}

// Hold makes requests to a route wait until the returned gate is released
func (b *Backend) Hold(route string) *Gate {
	g := newGate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gates[route] = g
	return g
}

func (b *Backend) releaseGates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for route, g := range b.gates {
		g.Release()
		delete(b.gates, route)
	}
}

// Gate parks requests until released
type Gate struct {
	entered     chan struct{}
	release     chan struct{}
	enterOnce   sync.Once
	releaseOnce sync.Once
}

func newGate() *Gate {
	return &Gate{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

// Entered is closed once the first request reaches the gate
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets every parked and future request through
func (g *Gate) Release() {
	g.releaseOnce.Do(func() { close(g.release) })
}

func (g *Gate) wait(done <-chan struct{}) {
	g.enterOnce.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-done:
	}
}
