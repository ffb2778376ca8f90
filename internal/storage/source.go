package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/commons-tools/fpc-bot/internal/fpc"
)

// The methods below let a synced database stand in for the live wiki.

// Candidates returns the stored candidate list of listPage
func (d *DB) Candidates(_ context.Context, listPage string) ([]string, error) {
	titles, err := d.Listing(listPage)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return titles, nil
}

// PageText returns the stored wikitext of a page
func (d *DB) PageText(_ context.Context, title string) (string, error) {
	p, err := d.GetPage(title)
	if err != nil {
		return "", fmt.Errorf("get page: %w", err)
	}
	if p == nil {
		return "", fmt.Errorf("%w: %s", fpc.ErrPageMissing, title)
	}
	if p.Redirect {
		return "", fmt.Errorf("%w: %s", fpc.ErrRedirect, title)
	}
	return p.Content, nil
}

// CreatedAt returns the stored first revision time of a page
func (d *DB) CreatedAt(_ context.Context, title string) (time.Time, bool, error) {
	p, err := d.GetPage(title)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get page: %w", err)
	}
	if p == nil || p.CreatedStamp == "" {
		return time.Time{}, false, nil
	}

	created, err := fpc.ParseRevisionStamp(p.CreatedStamp)
	if err != nil {
		return time.Time{}, false, err
	}
	return created, true, nil
}
