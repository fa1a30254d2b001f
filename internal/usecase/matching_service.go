package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arbovm/levenshtein"
	"go.uber.org/zap"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s-]`)

// Score weights
const (
	fuzzyWeightFactor  = 0.8  // Fuzzy matches count 80% of an exact match
	substringBonus     = 10.0 // Query is a substring of the document
	minFuzzyTokenLen   = 4
	defaultMinScore    = 25.0
	defaultFuzzyEdits  = 1
	maxMatchScore      = 100.0
	queryCoverageShare = 0.70
	docCoverageShare   = 0.10
	jaccardShare       = 0.20
)

// stopWords carry no product identity
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "for": true, "with": true,
	"by": true, "new": true, "edition": true, "version": true,
	"pack": true, "set": true, "bundle": true, "kit": true,
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinScore          float64
	FuzzyEditDistance int
}

// Match is one ranked document
type Match struct {
	Index         int
	Score         float64
	MatchedTokens []string
}

// MatchingService ranks catalog documents against a free text query
type MatchingService struct {
	minScore          float64
	fuzzyEditDistance int
	log               *zap.SugaredLogger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, log *zap.SugaredLogger) *MatchingService {
	minScore := config.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}

	edits := config.FuzzyEditDistance
	if edits <= 0 {
		edits = defaultFuzzyEdits
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &MatchingService{
		minScore:          minScore,
		fuzzyEditDistance: edits,
		log:               log,
	}
}

// Rank scores every document against query and returns those at or above the
// minimum score, best first. Equal scores keep document order.
func (s *MatchingService) Rank(query string, documents []string) []Match {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var matches []Match
	for i, doc := range documents {
		score, matched := s.score(query, queryTokens, doc)
		s.log.Debugw("catalog match", "query", query, "document", doc, "score", score, "matched", matched)
		if score >= s.minScore {
			matches = append(matches, Match{Index: i, Score: score, MatchedTokens: matched})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// score computes similarity between the query and a document on a 0-100 scale:
//   - query coverage: share of query tokens found in the document (exact or fuzzy)
//   - document coverage: share of document tokens found in the query
//   - Jaccard overlap of exact tokens
//   - bonus when the whole query appears in the document
func (s *MatchingService) score(query string, queryTokens []string, document string) (float64, []string) {
	docTokens := tokenize(document)
	if len(docTokens) == 0 {
		return 0, nil
	}

	var covered float64
	var matched []string
	for _, qt := range queryTokens {
		if containsToken(docTokens, qt) {
			covered++
			matched = append(matched, qt)
			continue
		}
		for _, dt := range docTokens {
			if s.fuzzyTokenMatch(qt, dt) {
				covered += fuzzyWeightFactor
				matched = append(matched, dt)
				break
			}
		}
	}
	if covered == 0 {
		return 0, nil
	}

	exact, _ := findIntersection(queryTokens, docTokens)
	docMatched, _ := findIntersection(docTokens, queryTokens)
	union := findUnion(queryTokens, docTokens)

	score := (covered/float64(len(queryTokens))*queryCoverageShare +
		float64(docMatched)/float64(len(docTokens))*docCoverageShare +
		float64(exact)/float64(union)*jaccardShare) * 100

	q := strings.Join(queryTokens, " ")
	if len(q) > 3 && strings.Contains(strings.Join(docTokens, " "), q) {
		score += substringBonus
	}

	if score > maxMatchScore {
		score = maxMatchScore
	}
	return score, matched
}

// fuzzyTokenMatch checks if two tokens are within the edit distance threshold
func (s *MatchingService) fuzzyTokenMatch(a, b string) bool {
	if a == b {
		return true
	}
	// Short tokens produce too many false positives
	if len(a) < minFuzzyTokenLen || len(b) < minFuzzyTokenLen {
		return false
	}
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > s.fuzzyEditDistance {
		return false
	}
	return levenshtein.Distance(a, b) <= s.fuzzyEditDistance
}

// tokenize splits a string into normalized lowercase tokens.
// Hyphenated words yield their parts and the joined form, so "WH-1000XM5"
// matches both "wh 1000xm5" and "wh1000xm5". Removes other punctuation,
// stop words and single characters. Digits are kept.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	cleaned = strings.ReplaceAll(cleaned, "_", " ")

	var tokens []string
	seen := make(map[string]bool)
	add := func(word string) {
		if len(word) <= 1 || stopWords[word] || seen[word] {
			return
		}
		seen[word] = true
		tokens = append(tokens, word)
	}

	for _, word := range strings.Fields(cleaned) {
		parts := strings.FieldsFunc(word, func(r rune) bool { return r == '-' })
		for _, part := range parts {
			add(part)
		}
		if len(parts) > 1 {
			add(strings.Join(parts, ""))
		}
	}
	return tokens
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

// findIntersection returns the count of common tokens and the list of matched tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
