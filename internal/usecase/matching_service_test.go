package usecase

import (
	"reflect"
	"testing"
)

var catalogDocs = []string{
	"Sony WH-1000XM5 wireless headphones",
	"Dyson V15 Detect cordless vacuum",
	"Apple AirPods Pro 2nd generation",
}

func TestNewMatchingService(t *testing.T) {
	t.Run("creates service with provided settings", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{MinScore: 50, FuzzyEditDistance: 2}, nil)
		if svc.minScore != 50 {
			t.Errorf("minScore = %v, want 50", svc.minScore)
		}
		if svc.fuzzyEditDistance != 2 {
			t.Errorf("fuzzyEditDistance = %v, want 2", svc.fuzzyEditDistance)
		}
	})

	t.Run("uses defaults when zero", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{}, nil)
		if svc.minScore != defaultMinScore {
			t.Errorf("minScore = %v, want %v (default)", svc.minScore, defaultMinScore)
		}
		if svc.fuzzyEditDistance != defaultFuzzyEdits {
			t.Errorf("fuzzyEditDistance = %v, want %v (default)", svc.fuzzyEditDistance, defaultFuzzyEdits)
		}
		if svc.log == nil {
			t.Error("log = nil, want nop logger")
		}
	})
}

func TestRank(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil)

	t.Run("matches hyphenated model numbers", func(t *testing.T) {
		matches := svc.Rank("sony-wh-1000xm5", catalogDocs)
		if len(matches) != 1 {
			t.Fatalf("len(matches) = %d, want 1", len(matches))
		}
		if matches[0].Index != 0 {
			t.Errorf("Index = %d, want 0", matches[0].Index)
		}
		if matches[0].Score <= defaultMinScore || matches[0].Score > maxMatchScore {
			t.Errorf("Score = %v, want within (%v, %v]", matches[0].Score, defaultMinScore, maxMatchScore)
		}
	})

	t.Run("joined model number matches hyphenated catalog entry", func(t *testing.T) {
		matches := svc.Rank("sony wh1000xm5", catalogDocs)
		if len(matches) != 1 || matches[0].Index != 0 {
			t.Fatalf("matches = %+v, want only index 0", matches)
		}
	})

	t.Run("tolerates a typo through fuzzy matching", func(t *testing.T) {
		matches := svc.Rank("dysen v15", catalogDocs)
		if len(matches) != 1 {
			t.Fatalf("len(matches) = %d, want 1", len(matches))
		}
		if matches[0].Index != 1 {
			t.Errorf("Index = %d, want 1", matches[0].Index)
		}
		want := []string{"dyson", "v15"}
		if !reflect.DeepEqual(matches[0].MatchedTokens, want) {
			t.Errorf("MatchedTokens = %v, want %v", matches[0].MatchedTokens, want)
		}
	})

	t.Run("exact match outscores fuzzy match", func(t *testing.T) {
		exact := svc.Rank("dyson v15", catalogDocs)
		fuzzy := svc.Rank("dysen v15", catalogDocs)
		if len(exact) != 1 || len(fuzzy) != 1 {
			t.Fatalf("exact = %+v, fuzzy = %+v", exact, fuzzy)
		}
		if exact[0].Score <= fuzzy[0].Score {
			t.Errorf("exact score %v should exceed fuzzy score %v", exact[0].Score, fuzzy[0].Score)
		}
	})

	t.Run("equal scores keep catalog order", func(t *testing.T) {
		matches := svc.Rank("apple vacuum", catalogDocs)
		if len(matches) != 2 {
			t.Fatalf("len(matches) = %d, want 2", len(matches))
		}
		if matches[0].Index != 1 || matches[1].Index != 2 {
			t.Errorf("order = [%d %d], want [1 2]", matches[0].Index, matches[1].Index)
		}
	})

	t.Run("drops matches below the minimum score", func(t *testing.T) {
		strict := NewMatchingService(MatchConfig{MinScore: 50}, nil)
		if matches := strict.Rank("apple vacuum", catalogDocs); len(matches) != 0 {
			t.Errorf("matches = %+v, want none", matches)
		}
	})

	t.Run("query of only stop words matches nothing", func(t *testing.T) {
		if matches := svc.Rank("the and of", catalogDocs); matches != nil {
			t.Errorf("matches = %+v, want nil", matches)
		}
	})

	t.Run("unrelated query matches nothing", func(t *testing.T) {
		if matches := svc.Rank("garden hose", catalogDocs); len(matches) != 0 {
			t.Errorf("matches = %+v, want none", matches)
		}
	})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "Sony WH-1000XM5", want: []string{"sony", "wh", "1000xm5", "wh1000xm5"}},
		{input: "The Legend of Zelda", want: []string{"legend", "zelda"}},
		{input: "LEGO_set (10497)", want: []string{"lego", "10497"}},
		{input: "pro pro PRO", want: []string{"pro"}},
		{input: "a - b", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFuzzyTokenMatch(t *testing.T) {
	svc := NewMatchingService(MatchConfig{FuzzyEditDistance: 1}, nil)

	tests := []struct {
		a, b string
		want bool
	}{
		{a: "dyson", b: "dysen", want: true},
		{a: "vacuum", b: "vacum", want: true},
		{a: "pro", b: "pri", want: false},
		{a: "airpods", b: "earbuds", want: false},
		{a: "headphones", b: "headphone", want: true},
		{a: "cordless", b: "cord", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			if got := svc.fuzzyTokenMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("fuzzyTokenMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
