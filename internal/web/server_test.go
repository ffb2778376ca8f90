package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/search"
	"github.com/commons-tools/fpc-bot/internal/storage"
)

const prefix = "Commons:Featured picture candidates/"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()

	db, err := storage.Open(filepath.Join(dir, "fpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	idx, err := search.Open(filepath.Join(dir, "bleve"), prefix)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	title := prefix + "File:Sunset.jpg"
	stamp := fpc.FormatRevisionStamp(time.Now().Add(-10 * 24 * time.Hour))
	require.NoError(t, db.UpsertPage(&storage.Page{Title: title, Content: "{{Support}} lovely sunset",
		ContentHash: "h", CreatedStamp: stamp, SyncedAt: time.Now()}))

	ev := fpc.Evaluation{Title: title, Status: fpc.StatusFeatured, Votes: fpc.Tally{Support: 6}, Closeable: true}
	evals := []*storage.Evaluation{storage.NewEvaluation("id-1", "run-1", ev, time.Now().Add(-time.Hour))}
	require.NoError(t, db.SaveEvaluations(evals))
	require.NoError(t, idx.IndexEvaluations(evals, map[string]string{title: "{{Support}} lovely sunset"}))

	srv, err := NewServer(db, idx, prefix, nil)
	require.NoError(t, err)
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexPage(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sunset.jpg")
	assert.Contains(t, rec.Body.String(), "1 hour ago")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestNominationsAPI(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/nominations")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []NominationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Sunset.jpg", views[0].Name)
	assert.Equal(t, "Featured", views[0].Status)
	assert.True(t, views[0].Closeable)
	assert.Equal(t, "1 week ago", views[0].Created)
}

func TestSearchAPI(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/search?q=sunset")
	assert.Contains(t, rec.Body.String(), "Found <strong>1</strong> results")

	rec = get(t, h, "/api/search?q=harbour")
	assert.Contains(t, rec.Body.String(), "No results found")

	rec = get(t, h, "/api/search")
	assert.Contains(t, rec.Body.String(), "empty-state")
}

func TestPageAPI(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/page?title="+url.QueryEscape(prefix+"File:Sunset.jpg"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{{Support}} lovely sunset", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/page?title=nope").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/page").Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(get(t, h, "/health").Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["pages_in_db"])
	assert.Equal(t, float64(1), body["nominations_in_index"])
}
