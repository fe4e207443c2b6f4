// Package store holds the in-memory project list and keeps it in step with
// the backend.
//
// A Store is the single source of truth for one session. Every write goes to
// the backend first; the local list only changes once the backend confirms.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"folio/models"

	"go.uber.org/zap"
)

// LatestCount is how many projects Latest returns.
const LatestCount = 3

var (
	ErrNotFound = errors.New("project not found")
	// ErrIDMismatch is returned when the backend answers an update with a
	// different project than the one requested.
	ErrIDMismatch = errors.New("backend returned a different project")
)

// API is the part of the backend client the store needs.
type API interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	UpdateProject(ctx context.Context, id string, fields models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	UploadProject(ctx context.Context, upload models.ProjectUpload) (*models.UploadResponse, error)
}

type Store struct {
	api      API
	logger   *zap.Logger
	notifier Notifier

	mu       sync.RWMutex
	projects []models.Project
	loading  bool
	inflight int
	// generation increases with every FetchAll so a slow response cannot
	// overwrite the result of a newer one.
	generation uint64

	listenersMu  sync.Mutex
	listeners    map[int]func([]models.Project)
	nextListener int
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// New returns an empty store in the loading state. Call FetchAll to populate it.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:       api,
		logger:    zap.NewNop(),
		projects:  []models.Project{},
		loading:   true,
		listeners: map[int]func([]models.Project){},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	return s
}

// Projects returns a copy of the current list, newest first.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

// Len returns the number of projects held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// Loading reports whether the store has a fetch in flight or has not finished
// its first one.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Get looks a project up by id. It never touches the network.
func (s *Store) Get(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return models.Project{}, false
	}
	return s.projects[idx], true
}

// Latest returns up to LatestCount of the most recently created projects.
// The list is kept newest first, so these are its head.
func (s *Store) Latest() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(LatestCount, len(s.projects))
	return slices.Clone(s.projects[:n])
}

// FetchAll replaces the list with the backend's collection.
// On failure the previous list is kept and the error is logged and returned.
// The loading flag is cleared once no fetch is in flight, whatever the outcome.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inflight++
	s.loading = true
	s.mu.Unlock()

	projects, err := s.api.ListProjects(ctx)
	if err == nil {
		projects = s.normalize(projects)
	}

	s.mu.Lock()
	s.inflight--
	if s.inflight == 0 {
		s.loading = false
	}
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to fetch projects", zap.Error(err))
		return fmt.Errorf("fetch projects: %w", err)
	}
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded project list", zap.Uint64("generation", gen))
		return nil
	}
	s.projects = projects
	snapshot := slices.Clone(s.projects)
	s.mu.Unlock()

	s.logger.Debug("projects fetched", zap.Int("count", len(snapshot)))
	s.publish(snapshot)
	return nil
}

// Update sends fields for id and, once the backend accepts them, replaces
// the local record with the backend's representation. When the backend
// answers without one, the fields are applied to the local record instead.
// Failures leave the list untouched and are returned for the caller to report.
func (s *Store) Update(ctx context.Context, id string, fields models.ProjectUpdate) (models.Project, error) {
	updated, err := s.api.UpdateProject(ctx, id, fields)
	if err != nil {
		s.logger.Warn("failed to update project", zap.String("id", id), zap.Error(err))
		return models.Project{}, fmt.Errorf("update project %s: %w", id, err)
	}
	// A record under another id would leave two entries with the same id.
	if updated != nil && updated.ID != id {
		s.logger.Warn("update answered for another project", zap.String("id", id), zap.String("got", updated.ID))
		return models.Project{}, fmt.Errorf("update project %s: %w: got %q", id, ErrIDMismatch, updated.ID)
	}

	s.mu.Lock()
	idx := s.indexLocked(id)

	var result models.Project
	switch {
	case updated != nil:
		result = *updated
	case idx >= 0:
		result = s.projects[idx]
		fields.Apply(&result)
	default:
		result = models.Project{ID: id}
		fields.Apply(&result)
	}

	if idx < 0 {
		s.mu.Unlock()
		s.logger.Debug("updated project no longer held locally", zap.String("id", id))
		return result, nil
	}
	s.projects[idx] = result
	SortProjects(s.projects)
	snapshot := slices.Clone(s.projects)
	s.mu.Unlock()

	s.logger.Info("project updated", zap.String("id", id))
	s.publish(snapshot)
	return result, nil
}

// Delete removes id on the backend and then locally. An id that is not held
// locally is reported without contacting the backend.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, ok := s.Get(id); !ok {
		s.notifier.Notify(deleteFailed)
		return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
	}

	if err := s.api.DeleteProject(ctx, id); err != nil {
		s.logger.Warn("failed to delete project", zap.String("id", id), zap.Error(err))
		s.notifier.Notify(deleteFailed)
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	s.mu.Lock()
	if idx := s.indexLocked(id); idx >= 0 {
		s.projects = slices.Delete(s.projects, idx, idx+1)
	}
	snapshot := slices.Clone(s.projects)
	s.mu.Unlock()

	s.logger.Info("project deleted", zap.String("id", id))
	s.notifier.Notify(Notice{
		Title:       "Project deleted",
		Description: "The project has been removed successfully.",
	})
	s.publish(snapshot)
	return nil
}

// Add uploads a new project and then refetches the list. No local record is
// created for it; it appears once the backend lists it.
func (s *Store) Add(ctx context.Context, upload models.ProjectUpload) (*models.UploadResponse, error) {
	resp, err := s.api.UploadProject(ctx, upload)
	if err != nil {
		s.logger.Warn("failed to upload project", zap.Error(err))
		s.notifier.Notify(Notice{
			Title:       "Error",
			Description: uploadFailureMessage(err),
			Destructive: true,
		})
		return nil, fmt.Errorf("upload project: %w", err)
	}

	description := resp.ImageURL
	if description == "" {
		description = "Your project has been uploaded successfully."
	}
	s.notifier.Notify(Notice{Title: "Project uploaded!", Description: description})

	if err := s.FetchAll(ctx); err != nil {
		s.logger.Warn("refresh after upload failed", zap.Error(err))
	}
	return resp, nil
}

// Subscribe registers fn to receive a snapshot of the list after every
// change. The returned function unregisters it.
func (s *Store) Subscribe(fn func([]models.Project)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// Helper functions

func (s *Store) publish(snapshot []models.Project) {
	s.listenersMu.Lock()
	fns := make([]func([]models.Project), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(slices.Clone(snapshot))
	}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.projects, func(p models.Project) bool { return p.ID == id })
}

// normalize drops records without an id or with a repeated one, then sorts.
func (s *Store) normalize(projects []models.Project) []models.Project {
	seen := make(map[string]struct{}, len(projects))
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			s.logger.Warn("dropping project without id", zap.String("name", p.Name))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			s.logger.Warn("dropping duplicate project", zap.String("id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	SortProjects(out)
	return out
}
