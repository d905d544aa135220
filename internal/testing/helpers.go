package testing

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glefebvre/moviedesk/internal/logger"
	"github.com/glefebvre/moviedesk/internal/models"
)

// StoreOption customizes TestDB
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger *logger.Logger
	level  string
}

// WithStoreLogger routes SQL logs to l at debug level
func WithStoreLogger(l *logger.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = l
		o.level = "debug"
	}
}

// TestDB creates an isolated in-memory SQLite database holding the movies table
func TestDB(t *testing.T, opts ...StoreOption) *gorm.DB {
	t.Helper()

	o := storeOptions{logger: logger.Discard(), level: "silent"}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(uniqueMemoryDSN()), &gorm.Config{
		Logger: logger.NewGormAdapter(o.logger, o.level),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access test database: %v", err)
	}
	// a single connection keeps the shared-cache database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Movie{}); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// uniqueMemoryDSN names a private shared-cache in-memory database
func uniqueMemoryDSN() string {
	return "file:" + uuid.New().String() + "?mode=memory&cache=shared"
}

// NewMovie returns a complete valid movie
func NewMovie(overrides ...func(*models.Movie)) models.Movie {
	movie := models.Movie{
		ID:       1,
		Title:    "Test Movie",
		Director: "Test Director",
		Year:     2024,
		Genre:    string(models.GenreDrama),
		Rating:   7.5,
		Duration: 120,
	}

	for _, override := range overrides {
		override(&movie)
	}
	return movie
}

// WithID sets the id of a movie
func WithID(id int) func(*models.Movie) {
	return func(m *models.Movie) {
		m.ID = id
	}
}

// WithTitle sets the title of a movie
func WithTitle(title string) func(*models.Movie) {
	return func(m *models.Movie) {
		m.Title = title
	}
}

// WithYear sets the release year of a movie
func WithYear(year int) func(*models.Movie) {
	return func(m *models.Movie) {
		m.Year = year
	}
}

// WithRating sets the rating of a movie
func WithRating(rating float64) func(*models.Movie) {
	return func(m *models.Movie) {
		m.Rating = rating
	}
}

// WithGenre sets the genre of a movie
func WithGenre(genre models.Genre) func(*models.Movie) {
	return func(m *models.Movie) {
		m.Genre = string(genre)
	}
}

// SampleMovies returns two movies whose orders differ for every sort key
func SampleMovies() []models.Movie {
	return []models.Movie{
		NewMovie(WithID(2), WithTitle("Zeta"), WithYear(2001), WithRating(5)),
		NewMovie(WithID(1), WithTitle("Alpha"), WithYear(2020), WithRating(3)),
	}
}

// AssertHits verifies how many requests reached a backend route
func AssertHits(t *testing.T, b *Backend, route string, expected int) {
	t.Helper()
	if got := b.Hits(route); got != expected {
		t.Fatalf("%s: expected %d hits, got %d", route, expected, got)
	}
}

// AssertCount verifies the number of stored movies
func AssertCount(t *testing.T, db *gorm.DB, expected int64, message string) {
	t.Helper()
	var count int64
	db.Model(&models.Movie{}).Count(&count)
	if count != expected {
		t.Fatalf("%s: expected count %d, got %d", message, expected, count)
	}
}
