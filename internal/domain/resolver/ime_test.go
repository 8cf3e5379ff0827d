package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMayBeComposing(t *testing.T) {
	tests := []struct {
		prefix, gap string
		want        bool
	}{
		{"", "compos", true},
		{"   ", "c", true},
		{"- ", "ni hao", true},
		{"## ", "ab", true},
		{"> ", "it's", true},
		{">>", "abc", true},
		{"- ## ", "abc", true},
		{"> [!note] ", "abc", true},
		{"> [!warning]- ", "abc", true},
		{"", "compos  ed", false},
		{"", "it''s", false},
		{"", "abc ", false},
		{"", " abc", false},
		{"", "abc1", false},
		{"", "", false},
		{"Some text ", "abc", false},
		{"#######  ", "abc", false},
		{"# ", "ab", true},
		{"#  ", "ab", false},
		{"\u00a0", "abc", true},
		{"\u3000- ", "abc", true},
		{"\u00a0\u2003> ", "abc", true},
		{"x\u00a0", "abc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MayBeComposing(tt.prefix, tt.gap), "prefix=%q gap=%q", tt.prefix, tt.gap)
	}
}
