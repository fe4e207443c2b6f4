package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"folio/api"
	"folio/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNew_InitialState(t *testing.T) {
	s, _ := newTestStore(t)

	assert.True(t, s.Loading())
	assert.Empty(t, s.Projects())
	assert.Empty(t, s.Latest())
	assert.Equal(t, 0, s.Len())
}

func TestFetchAll_SortsNewestFirst(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "jan1", CreatedAt: day(1)},
		models.Project{ID: "jan3", CreatedAt: day(3)},
		models.Project{ID: "jan2", CreatedAt: day(2)},
	)
	require.True(t, s.Loading())

	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, []string{"jan3", "jan2", "jan1"}, ids(s.Projects()))
	assert.False(t, s.Loading())
}

func TestFetchAll_EmptyCollection(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.FetchAll(context.Background()))

	assert.NotNil(t, s.Projects())
	assert.Empty(t, s.Projects())
	assert.False(t, s.Loading())
}

func TestFetchAll_TiesBrokenByID(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "c", CreatedAt: day(5)},
		models.Project{ID: "a", CreatedAt: day(5)},
		models.Project{ID: "z", CreatedAt: day(9)},
		models.Project{ID: "b", CreatedAt: day(5)},
	)

	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, []string{"z", "a", "b", "c"}, ids(s.Projects()))
}

func TestFetchAll_FallsBackToIDTime(t *testing.T) {
	older := fmt.Sprintf("%08x%016x", 1700000000, 1)
	newer := fmt.Sprintf("%08x%016x", 1710000000, 1)

	s, _ := newTestStore(t,
		models.Project{ID: older},
		models.Project{ID: "opaque"},
		models.Project{ID: newer},
	)

	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, []string{newer, older, "opaque"}, ids(s.Projects()))
}

func TestFetchAll_DropsDuplicateIDs(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "a", Name: "first", CreatedAt: day(1)},
		models.Project{ID: "a", Name: "second", CreatedAt: day(2)},
	)

	require.NoError(t, s.FetchAll(context.Background()))

	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "first", projects[0].Name)
}

func TestFetchAll_FailureKeepsPreviousList(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "a", CreatedAt: day(1)},
		models.Project{ID: "b", CreatedAt: day(2)},
	)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Projects()

	testServer.FailNext(http.MethodGet, "/api/projects", http.StatusInternalServerError)
	err := s.FetchAll(context.Background())

	require.Error(t, err)
	assert.Empty(t, cmp.Diff(before, s.Projects()))
	assert.False(t, s.Loading())
}

func TestFetchAll_FailureOnFirstLoadClearsLoading(t *testing.T) {
	s, _ := newTestStore(t)
	testServer.FailNext(http.MethodGet, "/api/projects", http.StatusBadGateway)

	require.Error(t, s.FetchAll(context.Background()))
	assert.False(t, s.Loading())
	assert.Empty(t, s.Projects())
}

func TestFetchAll_DiscardsSupersededResponse(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	stale := []models.Project{{ID: "stale", CreatedAt: day(1)}}
	fresh := []models.Project{{ID: "fresh", CreatedAt: day(2)}}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	stub := &stubAPI{list: func(ctx context.Context) ([]models.Project, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return stale, nil
		}
		return fresh, nil
	}}
	s := New(stub)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.FetchAll(context.Background()))
	}()

	<-started
	require.NoError(t, s.FetchAll(context.Background()))
	assert.Equal(t, []string{"fresh"}, ids(s.Projects()))
	assert.True(t, s.Loading(), "first fetch is still in flight")

	close(release)
	wg.Wait()

	assert.Equal(t, []string{"fresh"}, ids(s.Projects()))
	assert.False(t, s.Loading())
}

func TestUpdate_MatchesServerRepresentation(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "a", Name: "A", CreatedAt: day(1)},
		models.Project{ID: "b", Name: "B", Description: "old", CreatedAt: day(2)},
	)
	require.NoError(t, s.FetchAll(context.Background()))

	edits := []models.ProjectUpdate{
		{Name: ptr("B2")},
		{Description: ptr("new description")},
		{DeployLink: ptr("https://b.example.com"), Name: ptr("B3")},
	}

	for _, edit := range edits {
		updated, err := s.Update(context.Background(), "b", edit)
		require.NoError(t, err)

		local, ok := s.Get("b")
		require.True(t, ok)
		assert.Empty(t, cmp.Diff(updated, local))
	}

	local, _ := s.Get("b")
	assert.Equal(t, "B3", local.Name)
	assert.Equal(t, "new description", local.Description)
	assert.Equal(t, "https://b.example.com", local.DeployLink)

	other, _ := s.Get("a")
	assert.Equal(t, "A", other.Name)
}

func TestUpdate_FailureLeavesListUnchanged(t *testing.T) {
	s, rec := newTestStore(t,
		models.Project{ID: "a", Name: "A", CreatedAt: day(1)},
		models.Project{ID: "b", Name: "B", CreatedAt: day(2)},
	)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Projects()

	testServer.FailNext(http.MethodPut, "/api/projects/b", http.StatusInternalServerError)
	_, err := s.Update(context.Background(), "b", models.ProjectUpdate{Name: ptr("B2")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "update project b")
	assert.Empty(t, cmp.Diff(before, s.Projects()))
	assert.Empty(t, rec.All(), "update failures are reported by the caller")
}

func TestUpdate_NotHeldLocally(t *testing.T) {
	s, _ := newTestStore(t, models.Project{ID: "a", Name: "A", CreatedAt: day(1)})
	// The backend has "a" but the store never fetched it.

	updated, err := s.Update(context.Background(), "a", models.ProjectUpdate{Name: ptr("A2")})
	require.NoError(t, err)

	assert.Equal(t, "A2", updated.Name)
	assert.Empty(t, s.Projects())
}

func TestUpdate_RejectsDifferentID(t *testing.T) {
	stub := &stubAPI{
		list: func(ctx context.Context) ([]models.Project, error) {
			return []models.Project{
				{ID: "a", Name: "A", CreatedAt: day(1)},
				{ID: "b", Name: "B", CreatedAt: day(2)},
			}, nil
		},
		update: func(ctx context.Context, id string, fields models.ProjectUpdate) (*models.Project, error) {
			return &models.Project{ID: "b", Name: *fields.Name}, nil
		},
	}
	s := New(stub)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Projects()

	_, err := s.Update(context.Background(), "a", models.ProjectUpdate{Name: ptr("A2")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIDMismatch))
	assert.Empty(t, cmp.Diff(before, s.Projects()))
	assert.Equal(t, []string{"b", "a"}, ids(s.Projects()))
}

func TestUpdate_WithoutRepresentationAppliesFields(t *testing.T) {
	stub := &stubAPI{
		list: func(ctx context.Context) ([]models.Project, error) {
			return []models.Project{
				{ID: "a", Name: "A", Description: "keep me", CreatedAt: day(1)},
			}, nil
		},
		update: func(ctx context.Context, id string, fields models.ProjectUpdate) (*models.Project, error) {
			return nil, nil
		},
	}
	s := New(stub)
	require.NoError(t, s.FetchAll(context.Background()))

	updated, err := s.Update(context.Background(), "a", models.ProjectUpdate{Name: ptr("A2")})
	require.NoError(t, err)

	local, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, updated, local)
	assert.Equal(t, "A2", local.Name)
	assert.Equal(t, "keep me", local.Description)
	assert.Equal(t, day(1), local.CreatedAt)
}

func TestFetchAll_UnexpectedObjectKeepsList(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`[{"_id":"a"},{"_id":"b"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer server.Close()

	s := New(api.NewClient(api.MustEndpoints(server.URL)))
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Projects()
	require.Len(t, before, 2)

	err := s.FetchAll(context.Background())

	require.Error(t, err)
	assert.Empty(t, cmp.Diff(before, s.Projects()))
	assert.False(t, s.Loading())
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	s, rec := newTestStore(t,
		models.Project{ID: "a", Name: "A", CreatedAt: day(1)},
		models.Project{ID: "b", Name: "B", CreatedAt: day(2)},
		models.Project{ID: "c", Name: "C", CreatedAt: day(3)},
	)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Projects()

	require.NoError(t, s.Delete(context.Background(), "b"))

	after := s.Projects()
	assert.Len(t, after, len(before)-1)
	assert.Equal(t, []string{"c", "a"}, ids(after))
	assert.Empty(t, cmp.Diff([]models.Project{before[0], before[2]}, after))

	notices := rec.All()
	require.Len(t, notices, 1)
	assert.Equal(t, "Project deleted", notices[0].Title)
	assert.False(t, notices[0].Destructive)

	assert.Len(t, testServer.Projects(), 2)
}

func TestDelete_MissingID(t *testing.T) {
	s, rec := newTestStore(t, models.Project{ID: "a", CreatedAt: day(1)})
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Projects()
	requests := testServer.Requests()

	err := s.Delete(context.Background(), "abc")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, cmp.Diff(before, s.Projects()))
	assert.Equal(t, requests, testServer.Requests(), "no request for an unknown id")

	notices := rec.All()
	require.Len(t, notices, 1)
	assert.True(t, notices[0].Destructive)
	assert.Equal(t, "Failed to delete project.", notices[0].Description)
}

func TestDelete_FailureLeavesListUnchanged(t *testing.T) {
	s, rec := newTestStore(t,
		models.Project{ID: "a", CreatedAt: day(1)},
		models.Project{ID: "b", CreatedAt: day(2)},
	)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Projects()

	testServer.FailNext(http.MethodDelete, "/api/projects/a", http.StatusServiceUnavailable)
	err := s.Delete(context.Background(), "a")

	require.Error(t, err)
	assert.Empty(t, cmp.Diff(before, s.Projects()))
	require.Len(t, rec.All(), 1)
	assert.True(t, rec.All()[0].Destructive)
	assert.Len(t, testServer.Projects(), 2)
}

func TestGet(t *testing.T) {
	s, _ := newTestStore(t, models.Project{ID: "a", Name: "A", CreatedAt: day(1)})

	_, ok := s.Get("a")
	assert.False(t, ok, "nothing is held before the first fetch")

	require.NoError(t, s.FetchAll(context.Background()))

	p, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", p.Name)

	p, ok = s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, models.Project{}, p)

	_, ok = s.Get("")
	assert.False(t, ok)
}

func TestLatest_ReturnsNewestThree(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "d1", CreatedAt: day(1)},
		models.Project{ID: "d5", CreatedAt: day(5)},
		models.Project{ID: "d2", CreatedAt: day(2)},
		models.Project{ID: "d4", CreatedAt: day(4)},
		models.Project{ID: "d3", CreatedAt: day(3)},
	)
	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, []string{"d5", "d4", "d3"}, ids(s.Latest()))
}

func TestLatest_FewerThanThree(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "d1", CreatedAt: day(1)},
		models.Project{ID: "d2", CreatedAt: day(2)},
	)
	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, []string{"d2", "d1"}, ids(s.Latest()))
}

func TestAdd_RefetchesFromBackend(t *testing.T) {
	s, rec := newTestStore(t, models.Project{ID: "old", CreatedAt: day(1)})
	require.NoError(t, s.FetchAll(context.Background()))

	resp, err := s.Add(context.Background(), models.ProjectUpload{
		Name:       "Fresh",
		DeployLink: "https://fresh.example.com",
		ImageName:  "fresh.png",
		Image:      strings.NewReader("png"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Project)

	projects := s.Projects()
	require.Len(t, projects, 2)
	assert.Equal(t, resp.Project.ID, projects[0].ID, "new project is newest")
	assert.Equal(t, "Fresh", projects[0].Name)

	notices := rec.All()
	require.Len(t, notices, 1)
	assert.Equal(t, "Project uploaded!", notices[0].Title)
	assert.Equal(t, resp.ImageURL, notices[0].Description)
}

func TestAdd_ValidationFailure(t *testing.T) {
	s, rec := newTestStore(t)
	requests := testServer.Requests()

	_, err := s.Add(context.Background(), models.ProjectUpload{Name: "No link"})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, requests, testServer.Requests())
	assert.Empty(t, s.Projects())

	notices := rec.All()
	require.Len(t, notices, 1)
	assert.True(t, notices[0].Destructive)
	assert.Equal(t, "Please fill in all fields and select a file to upload.", notices[0].Description)
}

func TestAdd_BackendFailure(t *testing.T) {
	s, rec := newTestStore(t)
	testServer.FailNext(http.MethodPost, "/api/upload", http.StatusInternalServerError)

	_, err := s.Add(context.Background(), models.ProjectUpload{
		Name:       "Fresh",
		DeployLink: "https://fresh.example.com",
		ImageName:  "fresh.png",
		Image:      strings.NewReader("png"),
	})

	require.Error(t, err)
	assert.Empty(t, testServer.Projects())
	require.Len(t, rec.All(), 1)
	assert.Equal(t, "injected failure", rec.All()[0].Description)
}

func TestSubscribe(t *testing.T) {
	s, _ := newTestStore(t,
		models.Project{ID: "a", CreatedAt: day(1)},
		models.Project{ID: "b", CreatedAt: day(2)},
	)

	var mu sync.Mutex
	var snapshots [][]string
	unsubscribe := s.Subscribe(func(projects []models.Project) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, ids(projects))
	})

	require.NoError(t, s.FetchAll(context.Background()))
	require.NoError(t, s.Delete(context.Background(), "a"))

	unsubscribe()
	require.NoError(t, s.FetchAll(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{{"b", "a"}, {"b"}}, snapshots)
}

func TestSubscribe_SnapshotIsACopy(t *testing.T) {
	s, _ := newTestStore(t, models.Project{ID: "a", Name: "A", CreatedAt: day(1)})

	s.Subscribe(func(projects []models.Project) {
		projects[0].Name = "mutated"
	})
	require.NoError(t, s.FetchAll(context.Background()))

	p, _ := s.Get("a")
	assert.Equal(t, "A", p.Name)
}

func TestStore_ConcurrentUse(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	projects := []models.Project{
		{ID: "a", CreatedAt: day(1)},
		{ID: "b", CreatedAt: day(2)},
	}
	stub := &stubAPI{
		list: func(ctx context.Context) ([]models.Project, error) {
			return append([]models.Project(nil), projects...), nil
		},
		update: func(ctx context.Context, id string, fields models.ProjectUpdate) (*models.Project, error) {
			return &models.Project{ID: id, Name: *fields.Name, CreatedAt: day(1)}, nil
		},
	}
	s := New(stub)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.FetchAll(context.Background()))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Update(context.Background(), "a", models.ProjectUpdate{Name: ptr("x")})
		}()
		go func() {
			defer wg.Done()
			_ = s.Latest()
			_, _ = s.Get("b")
		}()
	}
	wg.Wait()

	assert.False(t, s.Loading())
	assert.Equal(t, 2, s.Len())
}

func ptr(s string) *string {
	return &s
}
