package prompts

import (
	"fmt"
	"strings"
	"unicode"
)

type Hit struct {
	Prompt
	Snippet string
	Rank    float64
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// ftsQuery turns free text into an FTS5 query: every word must appear, the
// last one as a prefix.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		f = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		if i == len(fields)-1 {
			f += "*"
		}
		fields[i] = f
	}
	return strings.Join(fields, " ")
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(query))
	runes := []rune(text)
	if idx < 0 {
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qLen := len([]rune(query))
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+qLen+contextChars, len(runes))

	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	return prefix + string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end]) + suffix
}

// Search finds prompts matching query, best match first. CJK queries fall
// back to substring matching because unicode61 does not segment them.
func (d *DB) Search(query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if containsCJK(query) {
		return d.searchLike(query, limit)
	}
	return d.searchFTS(query, limit)
}

func (d *DB) searchFTS(query string, limit int) ([]Hit, error) {
	rows, err := d.db.Query(`
		SELECT
			p.id, p.text, p.source, p.created_at,
			snippet(prompts_fts, 0, '>>>', '<<<', '...', 16) AS snip,
			bm25(prompts_fts) AS rank
		FROM prompts_fts
		JOIN prompts p ON prompts_fts.rowid = p.id
		WHERE prompts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Text, &h.Source, &h.CreatedAt, &h.Snippet, &h.Rank); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (d *DB) searchLike(query string, limit int) ([]Hit, error) {
	rows, err := d.db.Query(
		"SELECT id, text, source, created_at FROM prompts WHERE text LIKE ? ORDER BY id LIMIT ?",
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	ps, err := scanPrompts(rows)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(ps))
	for _, p := range ps {
		hits = append(hits, Hit{Prompt: p, Snippet: makeSnippet(p.Text, query, 16)})
	}
	return hits, nil
}
