package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

type countingStore struct {
	exercises map[int64]models.Exercise
	calls     int
	err       error
}

func (s *countingStore) GetExercise(_ context.Context, id int64) (*models.Exercise, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	ex, ok := s.exercises[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &ex, nil
}

func newTestCatalog(store Store) *Catalog {
	return New(store, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestGetExerciseReadsThrough verifies the second lookup is served from cache.
func TestGetExerciseReadsThrough(t *testing.T) {
	store := &countingStore{exercises: map[int64]models.Exercise{
		3: {ID: 3, Name: "Deadlift", Images: []string{"deadlift.jpg"}},
	}}
	c := newTestCatalog(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ex, err := c.GetExercise(ctx, 3)
		if err != nil {
			t.Fatalf("GetExercise: %v", err)
		}
		if ex.Name != "Deadlift" || ex.Image() != "deadlift.jpg" {
			t.Errorf("exercise = %+v", ex)
		}
	}
	if store.calls != 1 {
		t.Errorf("store calls = %d, want 1", store.calls)
	}

	c.Invalidate(3)
	if _, err := c.GetExercise(ctx, 3); err != nil {
		t.Fatalf("GetExercise after invalidate: %v", err)
	}
	if store.calls != 2 {
		t.Errorf("store calls after invalidate = %d, want 2", store.calls)
	}
}

// TestNameUnknown verifies missing ids degrade to the placeholder name and
// are not cached.
func TestNameUnknown(t *testing.T) {
	store := &countingStore{exercises: map[int64]models.Exercise{}}
	c := newTestCatalog(store)

	name, err := c.Name(context.Background(), 99)
	if err != nil {
		t.Fatalf("Name: %v", err)
	}
	if name != UnknownExercise {
		t.Errorf("name = %q, want %q", name, UnknownExercise)
	}
	if _, err := c.GetExercise(context.Background(), 99); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetExercise error = %v, want ErrNotFound", err)
	}
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2", store.calls)
	}
}

// TestNameStoreError verifies that non-missing errors propagate.
func TestNameStoreError(t *testing.T) {
	boom := errors.New("disk gone")
	c := newTestCatalog(&countingStore{err: boom})

	if _, err := c.Name(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("Name error = %v, want %v", err, boom)
	}
}
