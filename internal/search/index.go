package search

import (
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/storage"
)

// Index wraps a Bleve search index
type Index struct {
	index  bleve.Index
	prefix string
}

// IndexedNomination represents an evaluated nomination in the search index
type IndexedNomination struct {
	Title       string    `json:"title"`
	Name        string    `json:"name"` // title without the candidate prefix
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	Content     string    `json:"content"`
	Support     int       `json:"support"`
	Oppose      int       `json:"oppose"`
	Neutral     int       `json:"neutral"`
	AgeDays     int       `json:"age"`
	Featured    bool      `json:"featured"`
	Closeable   bool      `json:"closeable"`
	Withdrawn   bool      `json:"withdrawn"`
	Contested   bool      `json:"contested"`
	RunID       string    `json:"run_id"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// SearchResult represents a search result
type SearchResult struct {
	Title     string
	Name      string
	Status    string
	Reason    string
	Score     float64
	Fragments map[string][]string // Highlighted snippets
}

// Open opens or creates a Bleve index. prefix is stripped from titles to
// build the short Name field.
func Open(path, prefix string) (*Index, error) {
	var idx bleve.Index
	var err error

	// Try to open existing index
	idx, err = bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx, prefix: prefix}, nil
}

// buildIndexMapping maps status and reason as exact keywords so that
// status:"Not featured" does not also hit Featured
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	numericFieldMapping := bleve.NewNumericFieldMapping()
	boolFieldMapping := bleve.NewBooleanFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("status", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("reason", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("run_id", keywordFieldMapping)
	for _, f := range []string{"support", "oppose", "neutral", "age"} {
		docMapping.AddFieldMappingsAt(f, numericFieldMapping)
	}
	for _, f := range []string{"featured", "closeable", "withdrawn", "contested"} {
		docMapping.AddFieldMappingsAt(f, boolFieldMapping)
	}
	docMapping.AddFieldMappingsAt("evaluated_at", bleve.NewDateTimeFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}

// NewIndexedNomination builds the index document of a stored evaluation
func (i *Index) NewIndexedNomination(e *storage.Evaluation, content string) *IndexedNomination {
	return &IndexedNomination{
		Title:       e.Title,
		Name:        fpc.TrimTitle(e.Title, i.prefix),
		Status:      e.Status,
		Reason:      e.Reason,
		Content:     content,
		Support:     e.Support,
		Oppose:      e.Oppose,
		Neutral:     e.Neutral,
		AgeDays:     e.AgeDays,
		Featured:    e.Featured,
		Closeable:   e.Closeable,
		Withdrawn:   e.Withdrawn,
		Contested:   e.Contested,
		RunID:       e.RunID,
		EvaluatedAt: e.EvaluatedAt,
	}
}

// IndexNominations adds or updates nominations in one batch, keyed by title
func (i *Index) IndexNominations(docs []*IndexedNomination) error {
	batch := i.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.Title, doc); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.Title, err)
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Delete removes a nomination from the index
func (i *Index) Delete(title string) error {
	return i.index.Delete(title)
}

// Search performs a query string search (field:value, quotes, +/-, fuzzy ~)
func (i *Index) Search(queryStr string, limit int) ([]*SearchResult, error) {
	query := bleve.NewQueryStringQuery(queryStr)

	search := bleve.NewSearchRequestOptions(query, limit, 0, false)
	search.Highlight = bleve.NewHighlightWithStyle("html")
	search.Fields = []string{"title", "name", "status", "reason"}

	results, err := i.index.Search(search)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var searchResults []*SearchResult
	for _, hit := range results.Hits {
		result := &SearchResult{
			Title:     hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}

		if name, ok := hit.Fields["name"].(string); ok {
			result.Name = name
		}
		if status, ok := hit.Fields["status"].(string); ok {
			result.Status = status
		}
		if reason, ok := hit.Fields["reason"].(string); ok {
			result.Reason = reason
		}

		searchResults = append(searchResults, result)
	}

	return searchResults, nil
}

// IndexEvaluations indexes stored evaluations together with the page text
// they were computed from, keyed by title
func (i *Index) IndexEvaluations(evals []*storage.Evaluation, texts map[string]string) error {
	docs := make([]*IndexedNomination, 0, len(evals))
	for _, e := range evals {
		docs = append(docs, i.NewIndexedNomination(e, texts[e.Title]))
	}
	return i.IndexNominations(docs)
}

// IndexFromStorage brings the index in line with the latest stored
// evaluations. Nominations the database no longer knows are removed.
func (i *Index) IndexFromStorage(db *storage.DB) (indexed, pruned int, err error) {
	evals, err := db.LatestEvaluations()
	if err != nil {
		return 0, 0, fmt.Errorf("list evaluations: %w", err)
	}

	texts := make(map[string]string, len(evals))
	keep := make(map[string]bool, len(evals))
	for _, e := range evals {
		keep[e.Title] = true
		page, err := db.GetPage(e.Title)
		if err != nil {
			return 0, 0, fmt.Errorf("get page %s: %w", e.Title, err)
		}
		if page != nil {
			texts[e.Title] = page.Content
		}
	}

	if err := i.IndexEvaluations(evals, texts); err != nil {
		return 0, 0, err
	}

	pruned, err = i.Prune(keep)
	if err != nil {
		return len(evals), pruned, err
	}
	return len(evals), pruned, nil
}

// Prune deletes every indexed nomination whose title is not in keep
func (i *Index) Prune(keep map[string]bool) (int, error) {
	total, err := i.index.DocCount()
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(total), 0, false)
	results, err := i.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("list indexed nominations: %w", err)
	}

	removed := 0
	for _, hit := range results.Hits {
		if keep[hit.ID] {
			continue
		}
		if err := i.Delete(hit.ID); err != nil {
			return removed, fmt.Errorf("delete %s: %w", hit.ID, err)
		}
		removed++
	}
	return removed, nil
}

// Count returns the number of documents in the index
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
