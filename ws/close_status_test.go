package ws_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aptpod/wsproto-go/errors"
	. "github.com/aptpod/wsproto-go/ws"
)

func TestValidateCloseStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      CloseStatus
		description string
		wantErr     bool
	}{
		{name: "success: normal closure", status: CloseStatusNormalClosure},
		{name: "success: internal server error", status: CloseStatusInternalServerError, description: "oops"},
		{name: "success: 1003", status: CloseStatusInvalidMessageType},
		{name: "success: registered range", status: 3000},
		{name: "success: private range", status: 4999},
		{name: "success: 123 bytes", status: CloseStatusNormalClosure, description: strings.Repeat("a", 123)},
		{name: "success: multibyte", status: CloseStatusNormalClosure, description: "さようなら"},
		{name: "failure: 0", status: 0, wantErr: true},
		{name: "failure: 999", status: 999, wantErr: true},
		{name: "failure: 1004", status: 1004, wantErr: true},
		{name: "failure: 1005", status: CloseStatusEmpty, wantErr: true},
		{name: "failure: 1006", status: CloseStatusAbnormalClosure, wantErr: true},
		{name: "failure: 1015", status: CloseStatusTLSHandshakeFailure, wantErr: true},
		{name: "failure: 5000", status: 5000, wantErr: true},
		{name: "failure: 124 bytes", status: CloseStatusNormalClosure, description: strings.Repeat("a", 124), wantErr: true},
		{name: "failure: invalid UTF-8", status: CloseStatusNormalClosure, description: "\xc3\x28", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCloseStatus(tt.status, tt.description)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidCloseStatus)
				assert.ErrorIs(t, err, errors.ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsValidReceivedCloseStatus(t *testing.T) {
	valid := []CloseStatus{1000, 1001, 1002, 1003, 1007, 1008, 1009, 1010, 1011, 3000, 3999, 4000, 4999}
	invalid := []CloseStatus{0, 999, 1004, 1005, 1006, 1012, 1015, 2000, 2999, 5000, 65535}
	for _, s := range valid {
		assert.True(t, IsValidReceivedCloseStatus(s), "%d", s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidReceivedCloseStatus(s), "%d", s)
	}
}

func TestCloseStatus_String(t *testing.T) {
	assert.Equal(t, "NormalClosure", CloseStatusNormalClosure.String())
	assert.Equal(t, "ProtocolError", CloseStatusProtocolError.String())
	assert.Equal(t, "CloseStatus(4000)", CloseStatus(4000).String())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateConnecting, "Connecting"},
		{StateOpen, "Open"},
		{StateCloseSent, "CloseSent"},
		{StateCloseReceived, "CloseReceived"},
		{StateClosed, "Closed"},
		{StateAborted, "Aborted"},
		{State(42), "State(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestInvalidStateError(t *testing.T) {
	err := error(&InvalidStateError{Current: StateClosed, Accepted: []State{StateOpen, StateCloseSent}})
	assert.EqualError(t, err, "connection is Closed, expected one of [Open, CloseSent]")
	assert.ErrorIs(t, err, errors.ErrInvalidState)
}
