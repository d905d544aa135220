package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Field identifies one column of a movie record
type Field int

const (
	FieldID Field = iota
	FieldTitle
	FieldDirector
	FieldYear
	FieldGenre
	FieldRating
	FieldDuration
)

// Fields lists every field in canonical order. Validation reports the first
// offending field in this order and tables render columns in this order.
var Fields = []Field{
	FieldID,
	FieldTitle,
	FieldDirector,
	FieldYear,
	FieldGenre,
	FieldRating,
	FieldDuration,
}

var fieldKeys = map[Field]string{
	FieldID:       "id",
	FieldTitle:    "title",
	FieldDirector: "director",
	FieldYear:     "year",
	FieldGenre:    "genre",
	FieldRating:   "rating",
	FieldDuration: "duration",
}

var fieldLabels = map[Field]string{
	FieldID:       "ID",
	FieldTitle:    "Title",
	FieldDirector: "Director",
	FieldYear:     "Year",
	FieldGenre:    "Genre",
	FieldRating:   "Rating",
	FieldDuration: "Duration (mins)",
}

// Key returns the JSON key of the field
func (f Field) Key() string {
	if k, ok := fieldKeys[f]; ok {
		return k
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Label returns the human readable column title
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return f.Key()
}

func (f Field) String() string {
	return f.Key()
}

// ParseField resolves a field from its key, case-insensitively
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields {
		if fieldKeys[f] == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// Value renders the field of a movie as text
func (f Field) Value(m Movie) string {
	switch f {
	case FieldID:
		return strconv.Itoa(m.ID)
	case FieldTitle:
		return m.Title
	case FieldDirector:
		return m.Director
	case FieldYear:
		return strconv.Itoa(m.Year)
	case FieldGenre:
		return m.Genre
	case FieldRating:
		return strconv.FormatFloat(m.Rating, 'f', -1, 64)
	case FieldDuration:
		return strconv.Itoa(m.Duration)
	}
	return ""
}

// rule returns the validator tag used for the format check of the field
func (f Field) rule(strictGenres bool) string {
	switch f {
	case FieldID, FieldYear, FieldDuration:
		return "number"
	case FieldRating:
		return "numeric"
	case FieldGenre:
		if strictGenres {
			names := make([]string, 0, len(Genres()))
			for _, g := range Genres() {
				names = append(names, string(g))
			}
			return "oneof=" + strings.Join(names, " ")
		}
	}
	return ""
}

// formatHint is the message shown when a non-blank value has the wrong shape
func (f Field) formatHint() string {
	switch f {
	case FieldRating:
		return fmt.Sprintf("The %s field must be a number.", f.Key())
	case FieldGenre:
		names := make([]string, 0, len(Genres()))
		for _, g := range Genres() {
			names = append(names, string(g))
		}
		return fmt.Sprintf("The %s field must be one of: %s.", f.Key(), strings.Join(names, ", "))
	default:
		return fmt.Sprintf("The %s field must be a whole number.", f.Key())
	}
}
