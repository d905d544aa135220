package filter

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/glefebvre/moviedesk/internal/models"
)

// SortKey selects the ordering of the derived movie list
type SortKey int

const (
	// ByID orders by id ascending
	ByID SortKey = iota
	// ByYear orders by release year, newest first
	ByYear
	// ByRating orders by rating, highest first
	ByRating
)

// String returns the configuration name of the sort key
func (k SortKey) String() string {
	switch k {
	case ByYear:
		return "year"
	case ByRating:
		return "rating"
	default:
		return "id"
	}
}

// SortKeys lists the accepted sort key names
func SortKeys() []string {
	return []string{ByID.String(), ByYear.String(), ByRating.String()}
}

// ParseSortKey resolves a sort key name
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return ByID, nil
	case "year":
		return ByYear, nil
	case "rating":
		return ByRating, nil
	}
	return ByID, fmt.Errorf("unknown sort key '%s' (expected one of %s)", s, strings.Join(SortKeys(), ", "))
}

// Apply returns the movies whose title matches search, ordered by key.
// The input slice is never modified.
func Apply(movies []models.Movie, search string, key SortKey) []models.Movie {
	folder := cases.Fold()
	needle := folder.String(search)

	result := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if needle == "" || strings.Contains(folder.String(m.Title), needle) {
			result = append(result, m)
		}
	}

	sort.SliceStable(result, less(result, key))
	return result
}

func less(movies []models.Movie, key SortKey) func(i, j int) bool {
	switch key {
	case ByYear:
		return func(i, j int) bool { return movies[i].Year > movies[j].Year }
	case ByRating:
		return func(i, j int) bool { return movies[i].Rating > movies[j].Rating }
	default:
		return func(i, j int) bool { return movies[i].ID < movies[j].ID }
	}
}
