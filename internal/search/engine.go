package search

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pders01/skim/internal/api"
)

// Engine scores posts in memory without an index.
type Engine struct {
	epoch uint64
	posts []api.Post
	seen  map[int]bool
}

func NewEngine() *Engine {
	return &Engine{seen: make(map[int]bool)}
}

func (e *Engine) Sync(epoch uint64, posts []api.Post) error {
	if epoch != e.epoch {
		e.epoch = epoch
		e.posts = nil
		e.seen = make(map[int]bool)
	}
	for _, p := range posts {
		if !e.seen[p.ID] {
			e.seen[p.ID] = true
			e.posts = append(e.posts, p)
		}
	}
	return nil
}

func (e *Engine) Find(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	var results []*Result
	for _, p := range e.posts {
		if r := scorePost(p, terms); r != nil {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (e *Engine) DocCount() (int, error) {
	return len(e.posts), nil
}

func (e *Engine) Close() error {
	e.posts = nil
	return nil
}

func scorePost(p api.Post, terms []string) *Result {
	var matches []Match
	var total float64

	if s := scoreField(p.Title, terms, 4.0); s > 0 {
		matches = append(matches, Match{Field: "title", Text: p.Title, Weight: s})
		total += s
	}

	tags := strings.Join(p.Tags, " ")
	if s := scoreField(tags, terms, 2.0); s > 0 {
		matches = append(matches, Match{Field: "tags", Text: tags, Weight: s})
		total += s
	}

	if s := scoreField(p.Body, terms, 1.0); s > 0 {
		matches = append(matches, Match{Field: "body", Text: findBestSnippet(p.Body, terms, 160), Weight: s})
		total += s
	}

	// an exact id hit such as "12" ranks first
	for _, t := range terms {
		if t == strconv.Itoa(p.ID) {
			total += 10
		}
	}

	if total == 0 {
		return nil
	}
	return &Result{Post: p, Score: total, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matched := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matched++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matched++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matched++
			case strings.Contains(word, term):
				score += 0.5
				matched++
			}
		}
	}

	if len(terms) > 1 && matched > 1 {
		score *= 1.0 + float64(matched)/float64(len(terms))
	}

	tf := float64(matched) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// findBestSnippet returns the window of text that mentions the most terms.
func findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8
	if windowSize < 1 {
		windowSize = 1
	}
	if windowSize >= len(words) {
		return truncate(text, maxLength)
	}

	bestScore, bestStart := 0, 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore, bestStart = score, i
		}
	}

	return truncate(strings.Join(words[bestStart:bestStart+windowSize], " "), maxLength)
}

// tokenize lowercases text and splits it into letter/digit runs. Single
// characters are dropped unless they are digits.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if term := current.String(); len(term) > 1 || (len(term) == 1 && unicode.IsDigit(rune(term[0]))) {
			terms = append(terms, term)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	if current.Len() > 0 {
		flush()
	}

	return terms
}

// truncate limits text length in runes with an ellipsis
func truncate(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(r[:maxLen-1]) + "…"
}
