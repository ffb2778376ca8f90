package sync

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/storage"
)

// Source is where nomination pages are mirrored from
type Source interface {
	Candidates(ctx context.Context, listPage string) ([]string, error)
	PageText(ctx context.Context, title string) (string, error)
	CreatedAt(ctx context.Context, title string) (time.Time, bool, error)
}

// Worker mirrors candidate lists and their nomination pages into storage
type Worker struct {
	source      Source
	db          *storage.DB
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorker creates a new sync worker
func NewWorker(source Source, db *storage.DB, concurrency int, logger *slog.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		source:      source,
		db:          db,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// Stats holds sync statistics
type Stats struct {
	TotalPages   int
	NewPages     int
	UpdatedPages int
	SkippedPages int
	MissingPages int
	Redirects    int
	Errors       int
	Duration     time.Duration
}

// Sync mirrors every given list page and the nominations transcluded on it.
// A failing page is counted and logged; only a failing list aborts the run.
func (w *Worker) Sync(ctx context.Context, listPages ...string) (*Stats, error) {
	startTime := w.now()
	stats := &Stats{}

	w.logger.Info("starting sync", "lists", len(listPages))

	// 1. Collect candidates from all lists
	seen := make(map[string]bool) // a nomination can be listed twice
	var titles []string
	for _, list := range listPages {
		candidates, err := w.source.Candidates(ctx, list)
		if err != nil {
			return nil, fmt.Errorf("get candidates of %s: %w", list, err)
		}
		if err := w.db.SetListing(list, candidates); err != nil {
			return nil, fmt.Errorf("store listing %s: %w", list, err)
		}
		w.logger.Info("found candidates", "list", list, "count", len(candidates))

		for _, title := range candidates {
			if !seen[title] {
				seen[title] = true
				titles = append(titles, title)
			}
		}
	}
	stats.TotalPages = len(titles)

	// 2. Sync each page with concurrency
	titleChan := make(chan string, len(titles))
	for _, title := range titles {
		titleChan <- title
	}
	close(titleChan)

	var wg sync.WaitGroup
	var mu sync.Mutex

	for range w.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for title := range titleChan {
				if ctx.Err() != nil {
					return
				}
				if err := w.syncPage(ctx, title, stats, &mu); err != nil {
					w.logger.Error("sync page failed", "title", title, "error", err)
					mu.Lock()
					stats.Errors++
					mu.Unlock()
				}
			}
		}()
	}

	wg.Wait()

	stats.Duration = w.now().Sub(startTime)
	w.logger.Info("sync complete",
		"new", stats.NewPages, "updated", stats.UpdatedPages, "skipped", stats.SkippedPages,
		"missing", stats.MissingPages, "redirects", stats.Redirects, "errors", stats.Errors, "duration", stats.Duration)

	return stats, ctx.Err()
}

// syncPage syncs a single nomination page
func (w *Worker) syncPage(ctx context.Context, title string, stats *Stats, mu *sync.Mutex) error {
	// 1. Fetch wikitext
	text, err := w.source.PageText(ctx, title)
	if errors.Is(err, fpc.ErrRedirect) {
		w.logger.Debug("redirect", "title", title)
		redirect := &storage.Page{Title: title, Redirect: true, SyncedAt: w.now()}
		if err := w.db.UpsertPage(redirect); err != nil {
			return fmt.Errorf("upsert redirect: %w", err)
		}
		mu.Lock()
		stats.Redirects++
		mu.Unlock()
		return nil
	}
	if errors.Is(err, fpc.ErrPageMissing) {
		w.logger.Warn("skipping page", "title", title, "reason", err)
		mu.Lock()
		stats.MissingPages++
		mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("get page text: %w", err)
	}

	// 2. Compare content hash
	contentHash := fmt.Sprintf("%x", md5.Sum([]byte(text)))

	existingHash, err := w.db.GetContentHash(title)
	if err != nil {
		return fmt.Errorf("get content hash: %w", err)
	}

	if existingHash == contentHash {
		mu.Lock()
		stats.SkippedPages++
		mu.Unlock()
		return nil
	}

	// 3. Creation time from the first revision
	var stamp string
	created, ok, err := w.source.CreatedAt(ctx, title)
	if err != nil {
		return fmt.Errorf("get creation time: %w", err)
	}
	if ok {
		stamp = fpc.FormatRevisionStamp(created)
	} else {
		w.logger.Warn("could not retrieve history", "title", title)
	}

	// 4. Store
	page := &storage.Page{
		Title:        title,
		Content:      text,
		ContentHash:  contentHash,
		CreatedStamp: stamp,
		SyncedAt:     w.now(),
	}
	if err := w.db.UpsertPage(page); err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}

	mu.Lock()
	if existingHash == "" {
		stats.NewPages++
	} else {
		stats.UpdatedPages++
	}
	mu.Unlock()

	w.logger.Debug("synced", "title", title)
	return nil
}
