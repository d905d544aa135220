package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/glefebvre/moviedesk/internal/models"
	"github.com/glefebvre/moviedesk/internal/viewmodel"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// renderTable prints movies as a table whose columns follow models.Fields
func renderTable(w io.Writer, movies []models.Movie, total int) {
	if len(movies) == 0 {
		fmt.Fprintln(w, "No movies found.")
		return
	}

	tw := newTabWriter(w)
	labels := make([]string, len(models.Fields))
	for i, f := range models.Fields {
		labels[i] = f.Label()
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))

	for _, m := range movies {
		values := make([]string, len(models.Fields))
		for i, f := range models.Fields {
			values[i] = f.Value(m)
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}
	tw.Flush()

	if len(movies) != total {
		fmt.Fprintf(w, "%d of %d movies\n", len(movies), total)
	} else {
		fmt.Fprintf(w, "%d movies\n", total)
	}
}

// renderCard prints one movie, one field per line
func renderCard(w io.Writer, m models.Movie) {
	tw := newTabWriter(w)
	for _, f := range models.Fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f.Label(), f.Value(m))
	}
	tw.Flush()
}

// renderDraft prints the draft being edited along with the mode
func renderDraft(w io.Writer, s viewmodel.State) {
	if s.Mode == viewmodel.Editing {
		fmt.Fprintf(w, "Editing movie %d\n", s.EditingID)
	} else {
		fmt.Fprintln(w, "New movie")
	}
	if s.Draft.IsBlank() {
		fmt.Fprintln(w, "  (empty draft)")
		return
	}

	tw := newTabWriter(w)
	for _, f := range models.Fields {
		value := s.Draft.Get(f)
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", f.Key(), value)
	}
	tw.Flush()
}
