package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/storage"
)

type fakeSource struct {
	lists   map[string][]string
	texts   map[string]string
	created map[string]time.Time
	broken  map[string]bool
	redirs  map[string]bool
}

func (f *fakeSource) Candidates(_ context.Context, list string) ([]string, error) {
	titles, ok := f.lists[list]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fpc.ErrPageMissing, list)
	}
	return titles, nil
}

func (f *fakeSource) PageText(_ context.Context, title string) (string, error) {
	if f.broken[title] {
		return "", errors.New("connection reset")
	}
	if f.redirs[title] {
		return "", fmt.Errorf("%w: %s", fpc.ErrRedirect, title)
	}
	text, ok := f.texts[title]
	if !ok {
		return "", fmt.Errorf("%w: %s", fpc.ErrPageMissing, title)
	}
	return text, nil
}

func (f *fakeSource) CreatedAt(_ context.Context, title string) (time.Time, bool, error) {
	t, ok := f.created[title]
	return t, ok, nil
}

func newTestWorker(t *testing.T, src Source) (*Worker, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "fpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWorker(src, db, 3, nil), db
}

func TestSync(t *testing.T) {
	created := time.Date(2009, time.January, 3, 14, 5, 0, 0, time.UTC)
	src := &fakeSource{
		lists: map[string][]string{
			"list": {"A", "B", "Gone", "Broken"},
			"log":  {"A", "C"},
		},
		texts:   map[string]string{"A": "a", "B": "b", "C": "c", "Broken": "x"},
		created: map[string]time.Time{"A": created},
		broken:  map[string]bool{"Broken": true},
	}
	w, db := newTestWorker(t, src)
	ctx := context.Background()

	stats, err := w.Sync(ctx, "list", "log")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalPages)
	assert.Equal(t, 3, stats.NewPages)
	assert.Equal(t, 1, stats.MissingPages)
	assert.Equal(t, 1, stats.Errors)

	listing, err := db.Listing("list")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "Gone", "Broken"}, listing)

	got, ok, err := db.CreatedAt(ctx, "A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(created))

	_, ok, err = db.CreatedAt(ctx, "B")
	require.NoError(t, err)
	assert.False(t, ok)

	// Second run: one page changed, the rest skipped
	src.texts["B"] = "b2"
	stats, err = w.Sync(ctx, "list", "log")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.NewPages)
	assert.Equal(t, 1, stats.UpdatedPages)
	assert.Equal(t, 2, stats.SkippedPages)

	text, err := db.PageText(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "b2", text)
}

func TestSync_ListFailureAborts(t *testing.T) {
	w, _ := newTestWorker(t, &fakeSource{})

	_, err := w.Sync(context.Background(), "nope")
	assert.True(t, errors.Is(err, fpc.ErrPageMissing))
}

func TestSync_RecordsRedirects(t *testing.T) {
	src := &fakeSource{
		lists:  map[string][]string{"list": {"A", "Moved"}},
		texts:  map[string]string{"A": "a"},
		redirs: map[string]bool{"Moved": true},
	}
	w, db := newTestWorker(t, src)
	ctx := context.Background()

	stats, err := w.Sync(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NewPages)
	assert.Equal(t, 1, stats.Redirects)
	assert.Zero(t, stats.MissingPages)

	_, err = db.PageText(ctx, "Moved")
	assert.True(t, errors.Is(err, fpc.ErrRedirect), "got %v", err)
	assert.False(t, errors.Is(err, fpc.ErrPageMissing))
}
