package native_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aptpod/wsproto-go/errors"
	. "github.com/aptpod/wsproto-go/transport/websocket/native"
)

func TestValidateSubprotocol(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "token", in: "chat", wantErr: false},
		{name: "dotted", in: "v2.chat.example.com", wantErr: false},
		{name: "symbols", in: "!#$%&'*+-.^_`|~", wantErr: false},
		{name: "empty", in: "", wantErr: true},
		{name: "space", in: "a b", wantErr: true},
		{name: "comma", in: "a,b", wantErr: true},
		{name: "quote", in: `"a"`, wantErr: true},
		{name: "brace", in: "{a}", wantErr: true},
		{name: "control", in: "a\tb", wantErr: true},
		{name: "non ascii", in: "チャット", wantErr: true},
		{name: "del", in: "a\x7f", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubprotocol(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidSubprotocol)
				assert.ErrorIs(t, err, errors.ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_validateSubprotocols(t *testing.T) {
	assert.NoError(t, ValidateSubprotocols(nil))
	assert.NoError(t, ValidateSubprotocols([]string{"a", "b"}))
	assert.ErrorIs(t, ValidateSubprotocols([]string{"chat", "Chat"}), errors.ErrInvalidSubprotocol)
	assert.ErrorIs(t, ValidateSubprotocols([]string{"chat", "a b"}), errors.ErrInvalidSubprotocol)
}
