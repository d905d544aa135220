package models

import "strings"

// Genre is one of the fixed movie genres offered by the form
type Genre string

const (
	GenreAction  Genre = "Action"
	GenreComedy  Genre = "Comedy"
	GenreDrama   Genre = "Drama"
	GenreHorror  Genre = "Horror"
	GenreRomance Genre = "Romance"
	GenreSciFi   Genre = "Sci-Fi"
)

// Genres returns the enumerated genres in display order
func Genres() []Genre {
	return []Genre{GenreAction, GenreComedy, GenreDrama, GenreHorror, GenreRomance, GenreSciFi}
}

// ParseGenre resolves a genre case-insensitively
func ParseGenre(s string) (Genre, bool) {
	s = strings.TrimSpace(s)
	for _, g := range Genres() {
		if strings.EqualFold(string(g), s) {
			return g, true
		}
	}
	return "", false
}

// Movie is a movie record as exchanged with the movie backend
type Movie struct {
	ID       int     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title    string  `gorm:"type:varchar(255);not null" json:"title"`
	Director string  `gorm:"type:varchar(255);not null" json:"director"`
	Year     int     `gorm:"not null" json:"year"`
	Genre    string  `gorm:"type:varchar(64);not null" json:"genre"`
	Rating   float64 `gorm:"not null" json:"rating"`
	Duration int     `gorm:"not null" json:"duration"`
}

// TableName specifies the table name for Movie
func (Movie) TableName() string {
	return "movies"
}
