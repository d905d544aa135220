package viewmodel

import (
	"fmt"

	"github.com/glefebvre/moviedesk/internal/filter"
	"github.com/glefebvre/moviedesk/internal/models"
)

// Mode tells whether the draft will be added or used to update an existing movie
type Mode int

const (
	Creating Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "creating"
}

// MessageKind classifies the outcome of the last action
type MessageKind int

const (
	KindNone MessageKind = iota
	KindSuccess
	KindInfo
	KindWarning
	KindError
)

// Message is the single user-facing outcome of the last action. Text carries
// its leading marker.
type Message struct {
	Kind MessageKind
	Text string
}

// IsError reports whether the message belongs to the error class
func (m Message) IsError() bool {
	return m.Kind == KindError
}

// IsWarning reports whether the message is a warning
func (m Message) IsWarning() bool {
	return m.Kind == KindWarning
}

// IsZero reports whether no message is set
func (m Message) IsZero() bool {
	return m.Kind == KindNone && m.Text == ""
}

func (m Message) String() string {
	return m.Text
}

func success(text string) Message {
	return Message{Kind: KindSuccess, Text: "✅ " + text}
}

func deleted(text string) Message {
	return Message{Kind: KindSuccess, Text: "🗑️ " + text}
}

func editing(id int) Message {
	return Message{Kind: KindInfo, Text: fmt.Sprintf("✏️ Editing movie with ID %d", id)}
}

func warning(text string) Message {
	return Message{Kind: KindWarning, Text: "⚠️ " + text}
}

func failure(text string) Message {
	return Message{Kind: KindError, Text: "❌ " + text}
}

// Fixed message texts
const (
	textAdded       = "Movie added successfully."
	textUpdated     = "Movie updated successfully."
	textAddFailed   = "Error adding movie."
	textUpdFailed   = "Error updating movie."
	textDelFailed   = "Error deleting movie."
	textListFailed  = "Failed to fetch movies."
	textNotFound    = "Movie not found."
	textStillActive = "Another operation is still in progress."
)

// State is a read-only snapshot of the view-model
type State struct {
	Movies    []models.Movie
	Draft     models.Draft
	Mode      Mode
	EditingID int
	Message   Message
	Search    string
	Sort      filter.SortKey
	Lookup    *models.Movie
	Busy      bool
}

// clone returns a copy that shares no memory with s
func (s State) clone() State {
	out := s
	if s.Movies != nil {
		out.Movies = append([]models.Movie(nil), s.Movies...)
	}
	if s.Lookup != nil {
		lookup := *s.Lookup
		out.Lookup = &lookup
	}
	return out
}
