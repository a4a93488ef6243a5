package ws

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func Test_utf8Validator(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   bool
	}{
		{name: "ascii", chunks: [][]byte{[]byte("hello")}, want: true},
		{name: "empty", chunks: [][]byte{{}}, want: true},
		{name: "2-byte", chunks: [][]byte{[]byte("é")}, want: true},
		{name: "3-byte", chunks: [][]byte{[]byte("日本語")}, want: true},
		{name: "4-byte", chunks: [][]byte{[]byte("𝄞")}, want: true},
		{name: "max code point", chunks: [][]byte{{0xF4, 0x8F, 0xBF, 0xBF}}, want: true},
		{name: "last before surrogate", chunks: [][]byte{{0xED, 0x9F, 0xBF}}, want: true},
		{name: "split 2-byte", chunks: [][]byte{{0xC3}, {0xA9}}, want: true},
		{name: "split 4-byte", chunks: [][]byte{{0xF0, 0x9D}, {0x84}, {0x9E}}, want: true},
		{name: "lone continuation", chunks: [][]byte{{0x80}}, want: false},
		{name: "invalid lead byte", chunks: [][]byte{{0xF8, 0x80, 0x80, 0x80, 0x80}}, want: false},
		{name: "invalid continuation", chunks: [][]byte{{0xC3, 0x28}}, want: false},
		{name: "split invalid continuation", chunks: [][]byte{{0x01, 0x01, 0xC3}, {0x28}}, want: false},
		{name: "truncated at end", chunks: [][]byte{{0x61, 0xE6, 0x97}}, want: false},
		{name: "split truncated at end", chunks: [][]byte{{0xF0, 0x9D}, {0x84}}, want: false},
		{name: "surrogate low", chunks: [][]byte{{0xED, 0xA0, 0x80}}, want: false},
		{name: "surrogate high", chunks: [][]byte{{0xED, 0xBF, 0xBF}}, want: false},
		{name: "over max code point", chunks: [][]byte{{0xF4, 0x90, 0x80, 0x80}}, want: false},
		{name: "lead byte 0xF5", chunks: [][]byte{{0xF5, 0x80, 0x80, 0x80}}, want: false},
		{name: "overlong 2-byte", chunks: [][]byte{{0xC0, 0xAF}}, want: false},
		{name: "overlong 3-byte", chunks: [][]byte{{0xE0, 0x80, 0xAF}}, want: false},
		{name: "overlong 4-byte", chunks: [][]byte{{0xF0, 0x80, 0x80, 0xAF}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v utf8Validator
			got := true
			for i, chunk := range tt.chunks {
				if !v.validate(chunk, i == len(tt.chunks)-1) {
					got = false
					break
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_utf8Validator_MatchesStdlib(t *testing.T) {
	inputs := [][]byte{
		[]byte("plain"),
		[]byte("κόσμε"),
		{0xE2, 0x82, 0xAC},
		{0xEF, 0xBF, 0xBF},
		{0xED, 0xA0, 0x80},
		{0xC1, 0xBF},
		{0xF4, 0x90, 0x80, 0x80},
		{0xFE},
	}
	for _, in := range inputs {
		// 1バイトずつ分割しても結果は変わりません。
		var v utf8Validator
		got := true
		for i := range in {
			if !v.validate(in[i:i+1], i == len(in)-1) {
				got = false
				break
			}
		}
		assert.Equal(t, utf8.Valid(in), got, "% x", in)
	}
}

func Test_utf8Validator_ResetAtEndOfMessage(t *testing.T) {
	var v utf8Validator
	assert.True(t, v.validate([]byte("abc"), true))
	assert.True(t, v.validate([]byte{0xE6}, false))
	assert.True(t, v.validate([]byte{0x97, 0xA5}, true))
	assert.True(t, v.validate([]byte("next"), true))
}
