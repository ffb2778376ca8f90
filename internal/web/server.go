package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/report"
	"github.com/commons-tools/fpc-bot/internal/search"
	"github.com/commons-tools/fpc-bot/internal/storage"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	db        *storage.DB
	idx       *search.Index
	prefix    string
	logger    *slog.Logger
	templates *template.Template
}

// NominationView is one row of the dashboard and of /api/nominations
type NominationView struct {
	Title       string    `json:"title"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Support     int       `json:"support"`
	Oppose      int       `json:"oppose"`
	Neutral     int       `json:"neutral"`
	AgeDays     int       `json:"age_days"`
	Created     string    `json:"created"` // relative to the time of the request
	Closeable   bool      `json:"closeable"`
	Reason      string    `json:"reason,omitempty"`
	RunID       string    `json:"run_id"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

func NewServer(db *storage.DB, idx *search.Index, prefix string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"ago": humanize.Time,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}

	return &Server{
		db:        db,
		idx:       idx,
		prefix:    prefix,
		logger:    logger,
		templates: tmpl,
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/nominations", s.handleNominations)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/page", s.handleGetPage)
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

func (s *Server) nominations() ([]NominationView, error) {
	evals, err := s.db.LatestEvaluations()
	if err != nil {
		return nil, err
	}

	pages, err := s.db.ListPages()
	if err != nil {
		return nil, err
	}
	created := make(map[string]time.Time, len(pages))
	for _, p := range pages {
		if p.CreatedStamp == "" {
			continue
		}
		t, err := fpc.ParseRevisionStamp(p.CreatedStamp)
		if err != nil {
			s.logger.Warn("bad creation stamp", "title", p.Title, "error", err)
			continue
		}
		created[p.Title] = t
	}

	now := time.Now()
	views := make([]NominationView, 0, len(evals))
	for _, e := range evals {
		t, known := created[e.Title]
		views = append(views, NominationView{
			Title:       e.Title,
			Name:        fpc.TrimTitle(e.Title, s.prefix),
			Status:      e.Status,
			Support:     e.Support,
			Oppose:      e.Oppose,
			Neutral:     e.Neutral,
			AgeDays:     e.AgeDays,
			Created:     report.Created(t, known, now),
			Closeable:   e.Closeable,
			Reason:      e.Reason,
			RunID:       e.RunID,
			EvaluatedAt: e.EvaluatedAt,
		})
	}
	return views, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	views, err := s.nominations()
	if err != nil {
		s.logger.Error("list evaluations failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Nominations": views,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("render template failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleNominations(w http.ResponseWriter, r *http.Request) {
	views, err := s.nominations()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing nominations: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	w.Header().Set("Content-Type", "text/html")

	if query == "" {
		fmt.Fprint(w, `<div class="empty-state">
			<p>Search evaluated nominations</p>
			<ul>
				<li><strong>status:Featured</strong> - by status</li>
				<li><strong>support:&gt;=5</strong> - by vote count</li>
				<li><strong>sunset~</strong> - fuzzy matching</li>
			</ul>
		</div>`)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	results, err := s.idx.Search(query, limit)
	if err != nil {
		fmt.Fprintf(w, `<div class="error">
			<strong>Error:</strong> Search failed: %s
		</div>`, template.HTMLEscapeString(err.Error()))
		return
	}

	if len(results) == 0 {
		fmt.Fprintf(w, `<div class="no-results">
			<p>No results found for "<strong>%s</strong>"</p>
		</div>`, template.HTMLEscapeString(query))
		return
	}

	fmt.Fprintf(w, `<div class="results-header">
		<p>Found <strong>%d</strong> results for "<strong>%s</strong>"</p>
	</div>`, len(results), template.HTMLEscapeString(query))

	for i, result := range results {
		preview := ""
		if fragments, ok := result.Fragments["content"]; ok && len(fragments) > 0 {
			preview = fragments[0]
		}

		fmt.Fprintf(w, `<div class="result-card">
			<div class="result-number">%d</div>
			<div class="result-content">
				<h3><a href="/api/page?title=%s">%s</a></h3>
				<p class="result-meta">%s</p>`,
			i+1,
			template.URLQueryEscaper(result.Title),
			template.HTMLEscapeString(result.Name),
			template.HTMLEscapeString(result.Status))

		if result.Reason != "" {
			fmt.Fprintf(w, `<p class="result-reason">%s</p>`, template.HTMLEscapeString(result.Reason))
		}
		if preview != "" {
			// bleve escapes the fragment and only adds <mark>
			fmt.Fprintf(w, `<p class="result-preview">%s</p>`, preview)
		}

		fmt.Fprintf(w, `<div class="result-footer">
				<span class="result-score">Score: %.3f</span>
			</div>
		</div>
	</div>`, result.Score)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pageCount, _ := s.db.CountPages()
	evalCount, _ := s.db.CountEvaluations()
	indexCount, _ := s.idx.Count()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":               "ok",
		"pages_in_db":          pageCount,
		"evaluations_in_db":    evalCount,
		"nominations_in_index": indexCount,
	})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "Missing title parameter", http.StatusBadRequest)
		return
	}

	page, err := s.db.GetPage(title)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error retrieving page: %v", err), http.StatusInternalServerError)
		return
	}

	if page == nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}

	// Return wikitext
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(page.Content))
}
