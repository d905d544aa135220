package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/glefebvre/moviedesk/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

// Draft is the form-side representation of a movie: one text value per
// field, so a partially filled record can be held while it is edited.
type Draft struct {
	ID       string
	Title    string
	Director string
	Year     string
	Genre    string
	Rating   string
	Duration string
}

// DraftFromMovie renders a movie into a draft
func DraftFromMovie(m Movie) Draft {
	var d Draft
	for _, f := range Fields {
		d.Set(f, f.Value(m))
	}
	return d
}

// Get returns the raw text of a field
func (d Draft) Get(f Field) string {
	switch f {
	case FieldID:
		return d.ID
	case FieldTitle:
		return d.Title
	case FieldDirector:
		return d.Director
	case FieldYear:
		return d.Year
	case FieldGenre:
		return d.Genre
	case FieldRating:
		return d.Rating
	case FieldDuration:
		return d.Duration
	}
	return ""
}

// Set replaces the raw text of a field
func (d *Draft) Set(f Field, value string) {
	switch f {
	case FieldID:
		d.ID = value
	case FieldTitle:
		d.Title = value
	case FieldDirector:
		d.Director = value
	case FieldYear:
		d.Year = value
	case FieldGenre:
		d.Genre = value
	case FieldRating:
		d.Rating = value
	case FieldDuration:
		d.Duration = value
	}
}

// IsBlank reports whether no field holds any text
func (d Draft) IsBlank() bool {
	return d == Draft{}
}

// Validate checks the draft without converting it
func (d Draft) Validate(strictGenres bool) error {
	_, err := d.Movie(strictGenres)
	return err
}

// Movie converts a complete draft into a movie record.
//
// Blank fields are reported first, in canonical field order, before any
// format problem is looked at; the returned error is a validation AppError
// whose "field" context names the offending field.
func (d Draft) Movie(strictGenres bool) (Movie, error) {
	for _, f := range Fields {
		if err := validate.Var(d.Get(f), "notblank"); err != nil {
			return Movie{}, errors.FieldValidationError(f.Key(),
				fmt.Sprintf("Please fill out the %s field.", f.Key()))
		}
	}

	for _, f := range Fields {
		rule := f.rule(strictGenres)
		if rule == "" {
			continue
		}
		if err := validate.Var(canonical(f, d.Get(f)), rule); err != nil {
			return Movie{}, errors.FieldValidationError(f.Key(), f.formatHint())
		}
	}

	m := Movie{
		Title:    strings.TrimSpace(d.Title),
		Director: strings.TrimSpace(d.Director),
		Genre:    canonical(FieldGenre, d.Genre),
	}

	var err error
	if m.ID, err = atoi(FieldID, d.ID); err != nil {
		return Movie{}, err
	}
	if m.ID <= 0 {
		return Movie{}, errors.FieldValidationError(FieldID.Key(), "The id field must be a positive number.")
	}
	if m.Year, err = atoi(FieldYear, d.Year); err != nil {
		return Movie{}, err
	}
	if m.Duration, err = atoi(FieldDuration, d.Duration); err != nil {
		return Movie{}, err
	}
	if m.Rating, err = strconv.ParseFloat(strings.TrimSpace(d.Rating), 64); err != nil {
		return Movie{}, errors.FieldValidationError(FieldRating.Key(), FieldRating.formatHint())
	}

	return m, nil
}

// canonical trims a value and maps known genres to their enumerated spelling
func canonical(f Field, s string) string {
	s = strings.TrimSpace(s)
	if f == FieldGenre {
		if g, ok := ParseGenre(s); ok {
			return string(g)
		}
	}
	return s
}

func atoi(f Field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// only reachable on overflow, the format pass already saw digits
		return 0, errors.FieldValidationError(f.Key(), f.formatHint())
	}
	return n, nil
}
