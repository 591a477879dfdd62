// Package docs provides document search for the dialogue core.
//
// Two independent sources implement the same search contract: a local JSON
// document index (this file) and a remote cloud file-search collaborator
// (cloudsearch.go). The enrichment layer queries both and tolerates either
// failing.
package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmayachting/charterdesk/internal/models"
	"github.com/google/uuid"
)

// Document is one indexed document persisted as a JSON file.
type Document struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	UploadDate time.Time         `json:"upload_date"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Content    string            `json:"content"`
}

// Index is a keyword-searchable collection of documents backed by a
// directory of JSON files.
type Index struct {
	dir       string
	documents map[string]*Document
}

// NewIndex loads all documents from dir, creating it if missing.
func NewIndex(dir string) (*Index, error) {
	idx := &Index{dir: dir, documents: make(map[string]*Document)}
	if dir == "" {
		return idx, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("docs.NewIndex: failed to read document file", "path", path, "error", err)
			continue
		}
		var doc Document
		if err := json.Unmarshal(content, &doc); err != nil {
			slog.Warn("docs.NewIndex: skipping malformed document file", "path", path, "error", err)
			continue
		}
		idx.documents[doc.ID] = &doc
	}
	slog.Info("docs.NewIndex: document index loaded", "dir", dir, "count", len(idx.documents))
	return idx, nil
}

// Add indexes a document and persists it. A missing ID is generated.
func (idx *Index) Add(doc Document) (*Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now()
	}
	idx.documents[doc.ID] = &doc
	if idx.dir != "" {
		content, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
		}
		path := filepath.Join(idx.dir, doc.ID+".json")
		if err := os.WriteFile(path, content, 0644); err != nil {
			return nil, fmt.Errorf("failed to persist document %s: %w", doc.ID, err)
		}
	}
	return &doc, nil
}

// Get returns a document by ID, or nil.
func (idx *Index) Get(id string) *Document {
	return idx.documents[id]
}

// SearchDocuments ranks documents by keyword overlap with the query and
// returns matches with their best snippet, most relevant first.
func (idx *Index) SearchDocuments(ctx context.Context, query string) ([]models.DocumentMatch, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		match models.DocumentMatch
		score int
	}
	var results []scored
	for _, doc := range idx.documents {
		score := relevance(doc, terms)
		if score == 0 {
			continue
		}
		results = append(results, scored{
			match: models.DocumentMatch{
				ID:      doc.ID,
				Title:   doc.Filename,
				Snippet: bestSnippet(doc.Content, terms),
			},
			score: score,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].score > results[j].score })

	matches := make([]models.DocumentMatch, len(results))
	for i, r := range results {
		matches[i] = r.match
	}
	return matches, nil
}

// relevance counts query-term occurrences across filename and content.
// Filename hits weigh more than body hits.
func relevance(doc *Document, terms []string) int {
	lowerName := strings.ToLower(doc.Filename)
	lowerContent := strings.ToLower(doc.Content)
	score := 0
	for _, term := range terms {
		score += 3 * strings.Count(lowerName, term)
		score += strings.Count(lowerContent, term)
	}
	return score
}

// bestSnippet returns the first sentence containing any query term.
func bestSnippet(content string, terms []string) string {
	for _, sentence := range strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		lower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return strings.TrimSpace(sentence)
			}
		}
	}
	return ""
}

// queryTerms splits a query into lowercase terms, dropping short stop-ish
// words that would match everything.
func queryTerms(query string) []string {
	var terms []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		field = strings.Trim(field, ".,!?\"'")
		if len(field) < 3 {
			continue
		}
		terms = append(terms, field)
	}
	return terms
}
