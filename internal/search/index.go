// Package search provides a small, deterministic, concurrency-safe in-memory
// matcher over a user's content history. An index is built per query from
// the candidate items and is read-only afterwards.
//
// A document matches a query when one of its fields contains the query as a
// case-insensitive substring, or when it contains every non-stop-word token
// of the query in any order. Matches are ranked by Jaccard similarity
// between the query token set and the document token set,
// score = |Q ∩ D| / |Q ∪ D|, plus 1 for a phrase hit.
package search

import (
	"regexp"
	"sort"
	"strings"
)

// Doc is one searchable item. Fields are searched together (typically the
// prompt and the generated text).
type Doc struct {
	ID     string
	Fields []string
}

// Result is a matching document id with its score. Higher is better.
type Result struct {
	ID    string
	Score float64
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	// Match returns every matching document, best first. Ties keep the
	// order the documents were indexed in.
	Match(query string) []Result
	// TopK is Match capped at k results (k <= 0 means 3).
	TopK(query string, k int) []Result
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	maxDocs   int
}

func defaultConfig() config {
	return config{stopwords: defaultStopwords}
}

// WithStopwords replaces the default English stop words. An empty list
// disables stop-word removal.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		c.stopwords = m
	}
}

// WithMaxDocs indexes at most n documents.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

var defaultStopwords = func() map[string]struct{} {
	words := []string{"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"in", "is", "it", "of", "on", "or", "that", "the", "this", "to", "was", "with"}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id     string
	text   string // lower-cased, whitespace-normalized fields joined by newlines
	tokens map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index over docs.
func NewIndex(docs []Doc, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	out := make([]doc, 0, len(docs))
	for _, d := range docs {
		if cfg.maxDocs > 0 && len(out) >= cfg.maxDocs {
			break
		}
		parts := make([]string, 0, len(d.Fields))
		for _, f := range d.Fields {
			parts = append(parts, strings.ToLower(normalizeWhitespace(f)))
		}
		text := strings.Join(parts, "\n")
		out = append(out, doc{id: d.ID, text: text, tokens: tokenize(text, cfg.stopwords)})
	}
	return &index{cfg: cfg, docs: out}
}

func (i *index) Match(q string) []Result {
	phrase := strings.ToLower(strings.TrimSpace(normalizeWhitespace(q)))
	if phrase == "" || len(i.docs) == 0 {
		return nil
	}
	qTokens := tokenize(phrase, i.cfg.stopwords)
	qLen := len(qTokens)

	type scored struct {
		id    string
		score float64
		pos   int
	}
	buf := make([]scored, 0, len(i.docs))
	for pos, d := range i.docs {
		hit := strings.Contains(d.text, phrase)
		over := overlap(qTokens, d.tokens)
		if !hit && (qLen == 0 || over < qLen) {
			continue
		}
		score := 0.0
		if hit {
			score = 1
		}
		if union := qLen + len(d.tokens) - over; union > 0 {
			score += float64(over) / float64(union)
		}
		buf = append(buf, scored{id: d.id, score: score, pos: pos})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		return buf[a].pos < buf[b].pos
	})

	out := make([]Result, len(buf))
	for n, s := range buf {
		out[n] = Result{ID: s.id, Score: s.score}
	}
	return out
}

func (i *index) TopK(q string, k int) []Result {
	if k <= 0 {
		k = 3
	}
	res := i.Match(q)
	if len(res) > k {
		res = res[:k]
	}
	return res
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// normalizeWhitespace collapses runs of spaces, tabs and carriage returns
// to one space. Newlines are kept.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// WordCount counts whitespace-separated words in s.
func WordCount(s string) int { return len(strings.Fields(s)) }
