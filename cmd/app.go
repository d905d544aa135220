package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glefebvre/moviedesk/internal/config"
	"github.com/glefebvre/moviedesk/internal/errors"
	"github.com/glefebvre/moviedesk/internal/external/movieapi"
	"github.com/glefebvre/moviedesk/internal/filter"
	"github.com/glefebvre/moviedesk/internal/logger"
	"github.com/glefebvre/moviedesk/internal/metrics"
	"github.com/glefebvre/moviedesk/internal/viewmodel"
)

// app wires the configured backend client into a view-model
type app struct {
	cfg      *config.Config
	recorder *metrics.Recorder
	client   *movieapi.Client
	manager  *viewmodel.Manager
}

func newApp() (*app, error) {
	cfg := config.Get()

	sortKey, err := filter.ParseSortKey(cfg.View.DefaultSort)
	if err != nil {
		return nil, errors.ConfigError("invalid view.default_sort", err)
	}

	a := &app{cfg: cfg}

	var observer metrics.Observer = metrics.Nop{}
	if cfg.Metrics.Enabled {
		a.recorder = metrics.NewRecorder()
		observer = a.recorder
	}

	a.client = movieapi.New(movieapi.Config{
		BaseURL:  cfg.BaseURL(),
		Timeout:  cfg.RequestTimeout(),
		Observer: observer,
		Logger:   logger.HTTPLogger(),
	})

	a.manager = viewmodel.NewManager(a.client, viewmodel.Options{
		StrictGenres:  cfg.View.StrictGenres,
		GuardInFlight: cfg.View.GuardInFlight,
		DefaultSort:   sortKey,
		Logger:        logger.AppLogger(),
	})

	return a, nil
}

// actionError reports a command whose final message was a warning or an
// error. The message has already been printed.
type actionError struct {
	msg viewmodel.Message
}

func (e *actionError) Error() string {
	return e.msg.Text
}

// report prints the message, if any, and turns failures into an actionError
func report(cmd *cobra.Command, msg viewmodel.Message) error {
	if msg.IsZero() {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg.Text)
	if msg.IsError() || msg.IsWarning() {
		return &actionError{msg: msg}
	}
	return nil
}
