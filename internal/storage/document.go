package storage

import (
	"time"

	"github.com/commons-tools/fpc-bot/internal/fpc"
)

// Page is a snapshot of a nomination page
type Page struct {
	Title        string    `db:"title"`
	Content      string    `db:"content"` // Wikitext
	ContentHash  string    `db:"content_hash"`
	CreatedStamp string    `db:"created_stamp"` // first revision, "15:04, 2 January 2006"; empty if unknown
	Redirect     bool      `db:"redirect"`      // Content is empty
	SyncedAt     time.Time `db:"synced_at"`
}

// Evaluation is one stored evaluation of a nomination
type Evaluation struct {
	ID            string    `db:"id"`
	RunID         string    `db:"run_id"`
	Title         string    `db:"title"`
	Status        string    `db:"status"`
	Support       int       `db:"support"`
	Oppose        int       `db:"oppose"`
	Neutral       int       `db:"neutral"`
	StruckSupport int       `db:"struck_support"`
	StruckOppose  int       `db:"struck_oppose"`
	StruckNeutral int       `db:"struck_neutral"`
	AgeDays       int       `db:"age_days"`
	Images        int       `db:"images"`
	Sections      int       `db:"sections"`
	Withdrawn     bool      `db:"withdrawn"`
	Contested     bool      `db:"contested"`
	Featured      bool      `db:"featured"`
	Closeable     bool      `db:"closeable"`
	Reason        string    `db:"reason"`
	EvaluatedAt   time.Time `db:"evaluated_at"`
}

// NewEvaluation converts an evaluation result into a storable record
func NewEvaluation(id, runID string, ev fpc.Evaluation, at time.Time) *Evaluation {
	return &Evaluation{
		ID:            id,
		RunID:         runID,
		Title:         ev.Title,
		Status:        ev.Status.String(),
		Support:       ev.Votes.Support,
		Oppose:        ev.Votes.Oppose,
		Neutral:       ev.Votes.Neutral,
		StruckSupport: ev.Struck.Support,
		StruckOppose:  ev.Struck.Oppose,
		StruckNeutral: ev.Struck.Neutral,
		AgeDays:       ev.AgeDays,
		Images:        ev.Images,
		Sections:      ev.Sections,
		Withdrawn:     ev.Withdrawn,
		Contested:     ev.Contested,
		Featured:      ev.Featured,
		Closeable:     ev.Closeable,
		Reason:        ev.Reason,
		EvaluatedAt:   at,
	}
}
