package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"", "", true},
		{"", "x", false},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"*", "", true},
		{"*", "anything at all", true},
		{"a*", "abc", true},
		{"a*", "bc", false},
		{"*c", "abc", true},
		{"a*c", "abc", true},
		{"a*c", "ac", true},
		{"a*c", "abd", false},
		{"?", "a", true},
		{"?", "", false},
		{"?", "ab", false},
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"* joined the game", "alice joined the game", true},
		{"* joined the game", "alice joined the game early", false},
		{"Gave * to *", "Gave 4 stone to alice", true},
		{"*craft*table*", "alice did craft a crafting_table now", true},
		{"**", "abc", true},
		{"a**b", "ab", true},
		{"a**b", "axxb", true},
		{"?", "é", true},
		{"alice said ?", "alice said é", true},
		{"a?c", "aéc", true},
		{"caf?", "café", true},
		{"??", "é", false},
		{"* joined", "José joined", true},
		{"héllo *", "héllo wörld", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.input))
		})
	}
}
