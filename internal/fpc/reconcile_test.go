package fpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const closedNotFeatured = "'''result:''' 3 support, 2 oppose, 0 neutral => not featured."

func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		n       *Nomination
		verdict Verdict
		reason  string
	}{
		{"matching count", candidate(3, 2, 0, 40, closedNotFeatured), VerdictOK, ""},
		{"support differs", candidate(4, 2, 0, 40, closedNotFeatured), VerdictFail, ""},
		{"neutral differs", candidate(3, 2, 1, 40, closedNotFeatured), VerdictFail, ""},
		{"verdict differs", candidate(3, 2, 0, 40,
			"'''result:''' 3 support, 2 oppose, 0 neutral => featured."), VerdictFail, ""},
		{"no result", candidate(3, 2, 0, 40), VerdictSkipped, SkipNoResult},
		{"several results", candidate(3, 2, 0, 40, closedNotFeatured, closedNotFeatured), VerdictSkipped, SkipSeveralResults},
		{"withdrawn", candidate(3, 2, 0, 40, closedNotFeatured, "{{Withdraw}}"), VerdictSkipped, SkipWithdrawn},
		{"contested", candidate(3, 2, 0, 40, closedNotFeatured, "{{FPX}}"), VerdictSkipped, SkipContested},
	}

	e := testEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Reconcile(tt.n)
			assert.Equal(t, tt.verdict, out.Verdict)
			assert.Equal(t, tt.reason, out.Reason)
		})
	}
}

func TestReconcile_ReportsBothFigures(t *testing.T) {
	e := testEvaluator()
	out := e.Reconcile(candidate(6, 1, 0, 40,
		"'''result:''' 5 support, 1 oppose, 0 neutral => featured."))

	assert.Equal(t, VerdictFail, out.Verdict)
	assert.Equal(t, Tally{Support: 5, Oppose: 1}, out.Old)
	assert.Equal(t, Tally{Support: 6, Oppose: 1}, out.New)
	assert.True(t, out.WasFeatured)
	assert.True(t, out.Featured)
}
