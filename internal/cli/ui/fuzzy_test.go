package ui

import (
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"yes_no", "yes-no", 1},
		{"uuid_text", "uuid_txt", 1},
		{"ÅNGSTRÖM", "ANGSTROM", 2},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			result := LevenshteinDistance(tt.s1, tt.s2)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d; want %d", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"yes_no", "true_false", "numeric_boolean", "uuid_text", "unix_seconds"}

	tests := []struct {
		name     string
		target   string
		opts     *FuzzyMatchOptions
		expected []string
	}{
		{
			name:     "exact match",
			target:   "yes_no",
			expected: []string{"yes_no"},
		},
		{
			name:     "typo",
			target:   "uuid_txt",
			expected: []string{"uuid_text"},
		},
		{
			name:     "case insensitive by default",
			target:   "YES_NO",
			expected: []string{"yes_no"},
		},
		{
			name:     "case sensitive",
			target:   "YES_NO",
			opts:     &FuzzyMatchOptions{CaseSensitive: true},
			expected: []string{},
		},
		{
			name:     "nothing close",
			target:   "money_cents",
			expected: []string{},
		},
		{
			name:     "limited suggestions",
			target:   "x",
			opts:     &FuzzyMatchOptions{MaxDistance: 20, MaxSuggestions: 2},
			expected: []string{"yes_no", "uuid_text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindSimilar(tt.target, candidates, tt.opts)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("FindSimilar(%q) = %v; want %v", tt.target, result, tt.expected)
			}
		})
	}
}

func TestFindSimilarEmpty(t *testing.T) {
	if got := FindSimilar("yes_no", nil, nil); len(got) != 0 {
		t.Errorf("expected no suggestions without candidates, got %v", got)
	}
	if got := FindSimilar("", []string{"abcdefgh"}, nil); len(got) != 0 {
		t.Errorf("expected no suggestions for an empty target, got %v", got)
	}
}
