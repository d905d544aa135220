package viewmodel

import (
	"context"
	stderrors "errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/glefebvre/moviedesk/internal/errors"
	"github.com/glefebvre/moviedesk/internal/filter"
	"github.com/glefebvre/moviedesk/internal/logger"
	"github.com/glefebvre/moviedesk/internal/models"
)

// Client is the subset of the movie backend used by the Manager
type Client interface {
	ListAll(ctx context.Context) ([]models.Movie, error)
	Add(ctx context.Context, movie models.Movie) error
	Update(ctx context.Context, movie models.Movie) error
	Delete(ctx context.Context, id int) (string, error)
	GetByID(ctx context.Context, id int) (*models.Movie, error)
}

// Options tune the Manager behavior
type Options struct {
	// StrictGenres restricts the genre field to the enumerated genres
	StrictGenres bool
	// GuardInFlight ignores actions triggered while a backend call is outstanding.
	// When false, concurrent actions all run and the last response wins.
	GuardInFlight bool
	DefaultSort   filter.SortKey
	Logger        *logger.Logger
}

// Manager holds the form state and drives the backend client.
//
// The state mutex is never held across a backend call, so every action can be
// triggered from any goroutine while another is outstanding.
type Manager struct {
	client Client
	opts   Options
	log    *logger.Logger

	mu       sync.Mutex
	state    State
	inFlight int
	started  bool

	listing singleflight.Group
	// listIssued numbers list requests; listApplied is the newest one applied
	listIssued  uint64
	listApplied uint64
}

const listKey = "all"

// NewManager creates a Manager in Creating mode with a blank draft
func NewManager(client Client, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logger.AppLogger()
	}
	return &Manager{
		client: client,
		opts:   opts,
		log:    opts.Logger,
		state: State{
			Movies: []models.Movie{},
			Sort:   opts.DefaultSort,
		},
	}
}

// Start performs the initial fetch. Later calls do nothing.
func (m *Manager) Start(ctx context.Context) Message {
	m.mu.Lock()
	if m.started {
		msg := m.state.Message
		m.mu.Unlock()
		return msg
	}
	m.started = true
	m.mu.Unlock()

	return m.LoadAll(ctx)
}

// LoadAll replaces the movie list with the backend's. On failure the previous
// list is kept. Concurrent calls share one request.
func (m *Manager) LoadAll(ctx context.Context) Message {
	_, err, shared := m.listing.Do(listKey, func() (interface{}, error) {
		if !m.begin("load_all") {
			return nil, errors.BusyError("load_all")
		}
		defer m.end()
		return nil, m.fetchList(ctx)
	})
	return m.listed(err, shared)
}

// reload refetches after a mutation. It sends its own request instead of
// joining a pending one, and the caller already holds an in-flight slot.
func (m *Manager) reload(ctx context.Context) Message {
	return m.listed(m.fetchList(ctx), false)
}

func (m *Manager) fetchList(ctx context.Context) error {
	m.mu.Lock()
	m.listIssued++
	seq := m.listIssued
	m.mu.Unlock()

	movies, err := m.client.ListAll(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// a list read before a newer one was issued is stale
	if seq > m.listApplied {
		m.state.Movies = movies
		m.listApplied = seq
	}
	return nil
}

func (m *Manager) listed(err error, shared bool) Message {
	if err != nil && errors.GetErrorCode(err) != errors.CodeBusy {
		m.log.WithFields(map[string]interface{}{"shared": shared}).Error("failed to fetch movies", err)
		return m.setMessage(failure(textListFailed))
	}
	if err == nil {
		m.log.WithFields(map[string]interface{}{"count": m.count(), "shared": shared}).Debug("movies loaded")
	}
	return m.Message()
}

// ValidateDraft checks the draft and sets a warning naming the first
// offending field
func (m *Manager) ValidateDraft() bool {
	m.mu.Lock()
	draft := m.state.Draft
	m.mu.Unlock()

	if err := draft.Validate(m.opts.StrictGenres); err != nil {
		m.rejectDraft(err)
		return false
	}
	return true
}

// SubmitDraft adds or updates the draft depending on the mode. Nothing is
// sent when the draft does not validate. On success the draft is reset and
// the list is refetched; on failure draft and mode are kept.
func (m *Manager) SubmitDraft(ctx context.Context) Message {
	m.mu.Lock()
	draft, mode := m.state.Draft, m.state.Mode
	m.mu.Unlock()

	movie, err := draft.Movie(m.opts.StrictGenres)
	if err != nil {
		return m.rejectDraft(err)
	}

	if !m.begin("submit") {
		return m.Message()
	}
	defer m.end()

	if mode == Editing {
		err = m.client.Update(ctx, movie)
	} else {
		err = m.client.Add(ctx, movie)
	}

	fields := map[string]interface{}{"movie_id": movie.ID, "mode": mode.String()}
	if err != nil {
		m.log.WithFields(fields).Error("failed to submit movie", err)
		if mode == Editing {
			return m.setMessage(failure(textUpdFailed))
		}
		return m.setMessage(failure(textAddFailed))
	}
	m.log.WithFields(fields).Info("movie submitted")

	m.mu.Lock()
	if mode == Editing {
		m.state.Message = success(textUpdated)
	} else {
		m.state.Message = success(textAdded)
	}
	m.resetDraftLocked()
	m.mu.Unlock()

	return m.reload(ctx)
}

// DeleteRecord deletes a movie and refetches the list
func (m *Manager) DeleteRecord(ctx context.Context, id int) Message {
	if !m.begin("delete") {
		return m.Message()
	}
	defer m.end()

	text, err := m.client.Delete(ctx, id)

	fields := map[string]interface{}{"movie_id": id}
	if err != nil {
		m.log.WithFields(fields).Error("failed to delete movie", err)
		return m.setMessage(failure(textDelFailed))
	}
	m.log.WithFields(fields).Info("movie deleted")

	m.setMessage(deleted(text))
	return m.reload(ctx)
}

// FetchByID looks a movie up without touching the list or the draft
func (m *Manager) FetchByID(ctx context.Context, id int) Message {
	if !m.begin("fetch") {
		return m.Message()
	}
	movie, err := m.client.GetByID(ctx, id)
	m.end()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.log.WithFields(map[string]interface{}{
			"movie_id":  id,
			"not_found": errors.IsNotFound(err),
		}).Warn("movie lookup failed: " + err.Error())
		m.state.Lookup = nil
		m.state.Message = warning(textNotFound)
		return m.state.Message
	}

	found := *movie
	m.state.Lookup = &found
	m.state.Message = Message{}
	return m.state.Message
}

// BeginEdit copies a movie into the draft and switches to Editing
func (m *Manager) BeginEdit(movie models.Movie) Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Draft = models.DraftFromMovie(movie)
	m.state.Mode = Editing
	m.state.EditingID = movie.ID
	m.state.Message = editing(movie.ID)
	return m.state.Message
}

// Cancel blanks the draft and returns to Creating
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetDraftLocked()
}

// SetField replaces one field of the draft
func (m *Manager) SetField(f models.Field, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Draft.Set(f, value)
}

// SetSearch sets the title filter
func (m *Manager) SetSearch(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Search = text
}

// SetSort sets the display order
func (m *Manager) SetSort(key filter.SortKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Sort = key
}

// FilteredSorted returns the movies matching the search, in display order
func (m *Manager) FilteredSorted() []models.Movie {
	m.mu.Lock()
	movies, search, key := m.state.Movies, m.state.Search, m.state.Sort
	m.mu.Unlock()

	// Movies is only ever replaced, never modified in place
	return filter.Apply(movies, search, key)
}

// Snapshot returns a copy of the current state
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state.clone()
	s.Busy = m.inFlight > 0
	return s
}

// Message returns the last outcome
func (m *Manager) Message() Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Message
}

// Lookup returns a copy of the last looked-up movie, or nil
func (m *Manager) Lookup() *models.Movie {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Lookup == nil {
		return nil
	}
	found := *m.state.Lookup
	return &found
}

// Busy reports whether a backend call is outstanding
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight > 0
}

// begin registers an outstanding call. With the in-flight guard enabled it
// refuses when another call is outstanding and sets a warning instead.
func (m *Manager) begin(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opts.GuardInFlight && m.inFlight > 0 {
		err := errors.BusyError(action)
		m.log.WithFields(err.Context).Debug(err.Message)
		m.state.Message = warning(textStillActive)
		return false
	}
	m.inFlight++
	return true
}

func (m *Manager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
}

func (m *Manager) setMessage(msg Message) Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Message = msg
	return msg
}

func (m *Manager) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Movies)
}

func (m *Manager) resetDraftLocked() {
	m.state.Draft = models.Draft{}
	m.state.Mode = Creating
	m.state.EditingID = 0
}

func (m *Manager) rejectDraft(err error) Message {
	m.log.WithFields(map[string]interface{}{"field": errors.Field(err)}).Debug("draft rejected")
	return m.setMessage(validationMessage(err))
}

func validationMessage(err error) Message {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return warning(appErr.Message)
	}
	return warning(err.Error())
}
