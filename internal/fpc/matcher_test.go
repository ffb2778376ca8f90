package fpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMatcher = MustMatcher(DefaultCatalogue())

func TestMatcher_VoteAliases(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind VoteKind
		want int
	}{
		{"plain support", "{{Support}}", Support, 1},
		{"lower case support", "{{support}}", Support, 1},
		{"support with parameter", "{{Support|strong}} --~~~~", Support, 1},
		{"spaces inside braces", "{{ Support }}", Support, 1},
		{"shouting pro", "{{PRO}} {{pRO}}", Support, 2},
		{"cyrillic support", "{{за}}", Support, 1},
		{"swedish oppose is not support", "{{Stödjer ej}}", Support, 0},
		{"swedish oppose", "{{Stödjer ej}}", Oppose, 1},
		{"french oppose", "{{Contre}}", Oppose, 1},
		{"latin capital C", "{{Cупраць}}", Oppose, 1},
		{"cyrillic small с", "{{супраць}}", Oppose, 1},
		{"cyrillic capital С is not listed", "{{Супраць}}", Oppose, 0},
		{"contested counts as oppose", "{{FPX contested}}", Oppose, 1},
		{"neutral", "{{Neutral}}", Neutral, 1},
		{"neutra", "{{neutra}}", Neutral, 1},
		{"vn", "{{vn}}", Neutral, 1},
		{"russian abstain", "{{Воздерживаюсь}}", Neutral, 1},
		{"no braces", "Support, nice colours", Support, 0},
		{"other template", "{{Info}}", Support, 0},
		{"alias prefix only", "{{Supportive}}", Support, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testMatcher.Count(tt.kind, tt.text))
		})
	}
}

func TestMatcher_Struck(t *testing.T) {
	text := "* <s>{{Support}} changed my mind</s> {{Oppose}} --A\n" +
		"* <s>I think {{Neutral|meh}} after all</s>\n" +
		"* {{Support}} --B\n"

	assert.Equal(t, 2, testMatcher.Count(Support, text))
	assert.Equal(t, 1, testMatcher.CountStruck(Support, text))
	assert.Equal(t, 0, testMatcher.CountStruck(Oppose, text))
	assert.Equal(t, 1, testMatcher.CountStruck(Neutral, text))
}

func TestMatcher_StruckGreedyOnOneLine(t *testing.T) {
	text := "<s>{{Support}}</s> <s>{{Support}}</s>"

	assert.Equal(t, 2, testMatcher.Count(Support, text))
	assert.Equal(t, 1, testMatcher.CountStruck(Support, text))

	n := NewNomination(testMatcher, "x", text)
	assert.Equal(t, 1, n.CountVotes().Support)
	assert.Equal(t, 1, n.StruckVotes().Support)
}

func TestMatcher_StruckIsSubsetOfRaw(t *testing.T) {
	texts := []string{
		"",
		"<s>{{Support}}</s>",
		"<s>{{Support}}</s> <s>{{Support}}</s>",
		"<s>\n{{Support}}\n</s>",
		"<s>{{Oppose}}</s> {{Oppose}}\n<s>{{oppose|no}}</s>",
		"<s>nothing struck here</s>",
	}

	for _, text := range texts {
		for _, kind := range VoteKinds {
			assert.LessOrEqual(t, testMatcher.CountStruck(kind, text), testMatcher.Count(kind, text),
				"%s in %q", kind, text)
		}
	}
}

func TestMatcher_Markers(t *testing.T) {
	text := "=== [[:File:Sunset.jpg]] ===\n" +
		"[[File:Sunset.jpg|thumb|Sunset]]\n" +
		"[[image:Sunrise.jpg]]\n" +
		"{{withdraw|nominator request}}\n" +
		"{{FPX|too small}}\n" +
		"==Discussion== \n"

	assert.Equal(t, 2, testMatcher.CountMarker(MarkerImage, text))
	assert.Equal(t, 2, testMatcher.CountMarker(MarkerSection, text))
	assert.Equal(t, 1, testMatcher.CountMarker(MarkerWithdraw, text))
	assert.Equal(t, 1, testMatcher.CountMarker(MarkerContest, text))
	assert.Equal(t, 0, testMatcher.CountMarker(MarkerResult, text))
}

func TestMatcher_ContestIsNotContestedVote(t *testing.T) {
	assert.Equal(t, 0, testMatcher.CountMarker(MarkerContest, "{{FPX contested}}"))
	assert.Equal(t, 1, testMatcher.CountMarker(MarkerContest, "{{FPX}}"))
}

func TestMatcher_PriorResults(t *testing.T) {
	text := "'''result:''' 3 support, 2 oppose, 0 neutral => not featured.\n" +
		"'''result:'''  12 support, 1 oppose, 4 neutral=>featured\n"

	got := testMatcher.PriorResults(text)
	require.Len(t, got, 2)
	assert.Equal(t, PriorResult{Votes: Tally{Support: 3, Oppose: 2, Neutral: 0}, Featured: false}, got[0])
	assert.Equal(t, PriorResult{Votes: Tally{Support: 12, Oppose: 1, Neutral: 4}, Featured: true}, got[1])
}

func TestNewMatcher_RejectsEmptyCatalogue(t *testing.T) {
	_, err := NewMatcher(&Catalogue{})
	assert.Error(t, err)

	cat := DefaultCatalogue()
	cat.ImageNamespaces = nil
	_, err = NewMatcher(cat)
	assert.Error(t, err)
}

func TestAliasPattern(t *testing.T) {
	assert.Equal(t, "[Ss]upport", aliasPattern(Alias{Name: "Support", FoldFirst: true}))
	assert.Equal(t, "[Ss]tödjer ej", aliasPattern(Alias{Name: "Stödjer ej", FoldFirst: true}))
	assert.Equal(t, "支持", aliasPattern(Alias{Name: "支持", FoldFirst: true}))
	assert.Equal(t, "FPX", aliasPattern(Alias{Name: "FPX"}))
}
