package fpc

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2009, time.January, 20, 12, 0, 0, 0, time.UTC)

func testEvaluator() *Evaluator {
	e := NewEvaluator(DefaultPolicy())
	e.Now = func() time.Time { return testNow }
	return e
}

// candidate builds a nomination page with the given number of votes, created
// the given number of days before testNow
func candidate(support, oppose, neutral, days int, extra ...string) *Nomination {
	var b strings.Builder
	b.WriteString("=== [[:File:Sunset.jpg]] ===\n[[File:Sunset.jpg|thumb|Sunset]]\n")
	b.WriteString("* Info created by A -- nominated by A\n")
	for i := 0; i < support; i++ {
		fmt.Fprintf(&b, "* {{Support}} --[[User:S%d]]\n", i)
	}
	for i := 0; i < oppose; i++ {
		fmt.Fprintf(&b, "* {{Oppose}} too noisy --[[User:O%d]]\n", i)
	}
	for i := 0; i < neutral; i++ {
		fmt.Fprintf(&b, "* {{Neutral}} --[[User:N%d]]\n", i)
	}
	for _, e := range extra {
		b.WriteString(e + "\n")
	}

	n := NewNomination(testMatcher, "Commons:Featured picture candidates/File:Sunset.jpg", b.String())
	return n.WithCreated(testNow.Add(-time.Duration(days) * 24 * time.Hour))
}

func TestCountVotes_NoTokens(t *testing.T) {
	n := NewNomination(testMatcher, "x", "Just some prose about a sunset.\n== Header ==\n")
	assert.Equal(t, Tally{}, n.CountVotes())
	assert.Equal(t, Tally{}, n.StruckVotes())
	assert.False(t, n.IsWithdrawn())
	assert.False(t, n.IsContested())
}

func TestCountVotes_SubtractsStruck(t *testing.T) {
	text := "* {{Support}} --A\n" +
		"* {{support|strong}} --B\n" +
		"* {{Oppose}} noisy --C\n" +
		"* {{Neutral}} --D\n" +
		"* <s>{{Support}} changed my mind</s> {{Oppose}} --E\n"

	n := NewNomination(testMatcher, "x", text)
	assert.Equal(t, Tally{Support: 2, Oppose: 2, Neutral: 1}, n.CountVotes())
	assert.Equal(t, Tally{Support: 1}, n.StruckVotes())
}

func TestCountVotes_Memoized(t *testing.T) {
	n := candidate(3, 1, 1, 10)

	first := n.CountVotes()
	second := n.CountVotes()
	_ = n.ImageCount()
	_ = n.IsWithdrawn()

	assert.Equal(t, first, second)
	assert.Equal(t, 1, n.scans)
}

func TestNewNomination_NormalizesText(t *testing.T) {
	// "Sí" written with a combining acute accent
	n := NewNomination(testMatcher, "x", "{{Si\u0301}}")
	assert.Equal(t, 1, n.CountVotes().Support)
}

func TestEvaluate_WithdrawnWins(t *testing.T) {
	e := testEvaluator()
	n := candidate(10, 0, 0, 20, "{{withdraw}}")

	ev := e.Evaluate(n)
	assert.Equal(t, StatusWithdrawn, ev.Status)
	assert.False(t, ev.Featured)
	assert.False(t, ev.Closeable)
	assert.Equal(t, ReasonWithdrawn, ev.Reason)
}

func TestEvaluate_WithdrawnBeforeMultipleImages(t *testing.T) {
	e := testEvaluator()
	n := candidate(10, 0, 0, 20, "{{withdraw}}", "[[File:b.jpg]]")

	ev := e.Evaluate(n)
	assert.Equal(t, 2, ev.Images)
	assert.Equal(t, StatusWithdrawn, ev.Status)
	assert.False(t, ev.Closeable)
	assert.Equal(t, ReasonMultipleImages, ev.Reason)
}

func TestEvaluate_MultipleImagesIgnored(t *testing.T) {
	e := testEvaluator()
	n := candidate(8, 0, 0, 12, "[[File:Sunset edit.jpg|thumb|Edit]]")

	ev := e.Evaluate(n)
	assert.Equal(t, 2, ev.Images)
	assert.Equal(t, StatusIgnored, ev.Status)
	assert.False(t, ev.Closeable)
	assert.Equal(t, ReasonMultipleImages, ev.Reason)
}

func TestEvaluate_Thresholds(t *testing.T) {
	tests := []struct {
		name                  string
		support, oppose, days int
		want                  Status
	}{
		{"exactly twice the opposes", 5, 2, 9, StatusFeatured},
		{"not twice the opposes", 5, 3, 9, StatusNotFeatured},
		{"too few supports", 4, 0, 9, StatusNotFeatured},
		{"eight days is active", 10, 0, 8, StatusActive},
		{"nine days is decided", 10, 0, 9, StatusFeatured},
		{"old and empty", 0, 0, 30, StatusNotFeatured},
	}

	e := testEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := e.Evaluate(candidate(tt.support, tt.oppose, 0, tt.days))
			assert.Equal(t, tt.want, ev.Status)
			assert.Equal(t, tt.days, ev.AgeDays)
		})
	}
}

func TestEvaluate_AgeTruncatesToWholeDays(t *testing.T) {
	e := testEvaluator()
	n := candidate(10, 0, 0, 0)
	n.WithCreated(testNow.Add(-(9*24*time.Hour - time.Minute)))

	ev := e.Evaluate(n)
	assert.Equal(t, 8, ev.AgeDays)
	assert.Equal(t, StatusActive, ev.Status)
	assert.Contains(t, ev.Reason, ReasonTooYoung)
}

func TestEvaluate_UnknownCreationIsActive(t *testing.T) {
	e := testEvaluator()
	n := NewNomination(testMatcher, "x", strings.Repeat("* {{Support}}\n", 10))

	ev := e.Evaluate(n)
	assert.Equal(t, 0, ev.AgeDays)
	assert.Equal(t, StatusActive, ev.Status)
	assert.False(t, ev.Closeable)
}

func TestEvaluate_ContestedKeepsStatusButIsNotCloseable(t *testing.T) {
	e := testEvaluator()
	ev := e.Evaluate(candidate(6, 0, 0, 10, "{{FPX|too small}}"))

	assert.Equal(t, StatusFeatured, ev.Status)
	assert.True(t, ev.Contested)
	assert.False(t, ev.Closeable)
	assert.Equal(t, ReasonContested, ev.Reason)
}

func TestProposeClose(t *testing.T) {
	e := testEvaluator()
	n := candidate(5, 2, 1, 9)

	p, ev, ok := e.ProposeClose(n)
	require.True(t, ok)
	assert.Equal(t, StatusFeatured, ev.Status)

	want := "\n\n{{FPC-results-ready-for-review|support=5|oppose=2|neutral=1|featured=yes|sig=~~~~}}"
	assert.Equal(t, want, p.Annotation)
	assert.Equal(t, n.Text, p.OldText)
	assert.Equal(t, n.Text+want, p.NewText)
	assert.Contains(t, p.Diff, "+{{FPC-results-ready-for-review|support=5|oppose=2|neutral=1|featured=yes|sig=~~~~}}")
}

func TestProposeClose_NotCloseable(t *testing.T) {
	e := testEvaluator()

	p, ev, ok := e.ProposeClose(candidate(5, 0, 0, 3))
	assert.False(t, ok)
	assert.Nil(t, p)
	assert.NotEmpty(t, ev.Reason)
}

func TestResultAnnotation_NotFeatured(t *testing.T) {
	got := ResultAnnotation(Tally{Support: 1, Oppose: 4}, false)
	assert.Equal(t, "\n\n{{FPC-results-ready-for-review|support=1|oppose=4|neutral=0|featured=no|sig=~~~~}}", got)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "Not featured", StatusNotFeatured.String())
	assert.Equal(t, "Ignored", StatusIgnored.String())
	assert.Equal(t, "oppose", Oppose.String())
}
