package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"intake/internal/profile"
)

func TestMatchOption(t *testing.T) {
	options := []string{"JavaScript", "Python", "Java"}

	tests := []struct {
		name       string
		candidates [][]string
		want       string
		ok         bool
	}{
		{"first candidate wins", [][]string{{"JavaScript"}, {"Python"}}, "JavaScript", true},
		{"exact beats substring", [][]string{{"java"}}, "Java", true},
		{"option inside candidate", [][]string{{"Python 3"}}, "Python", true},
		{"candidate inside option", [][]string{{"script"}}, "JavaScript", true},
		{"later group when first misses", [][]string{{"Rust"}, {"python"}}, "Python", true},
		{"no match", [][]string{{"Rust"}}, "", false},
		{"blank candidate ignored", [][]string{{"  "}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := profile.MatchOption(options, tt.candidates)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchText_ReturnsOptionVerbatim(t *testing.T) {
	got, ok := profile.MatchText([]string{"Bachelor's Degree", "Master's Degree"}, "master's degree")

	assert.True(t, ok)
	assert.Equal(t, "Master's Degree", got)
}
