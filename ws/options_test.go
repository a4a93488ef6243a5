package ws_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aptpod/wsproto-go/log"
	. "github.com/aptpod/wsproto-go/ws"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, RoleClient, c.Role)
	assert.Nil(t, c.KeepAliveInterval)
	assert.Equal(t, 4096, c.ReceiveBufferSize)
	assert.Nil(t, c.Pool)
	assert.Equal(t, log.NewNop(), c.Logger)

	c.ReceiveBufferSize = 1
	assert.Equal(t, 4096, DefaultConfig().ReceiveBufferSize)
}

func TestOptions(t *testing.T) {
	pool := bufferPoolForTest()
	buf := make([]byte, 32)
	logger := log.NewStd()

	c := DefaultConfig()
	for _, opt := range []Option{
		WithRole(RoleServer),
		WithSubprotocol("chat"),
		WithKeepAliveInterval(time.Second),
		WithReceiveBufferSize(128),
		WithReceiveBuffer(buf),
		WithPool(pool),
		WithLogger(logger),
	} {
		opt(c)
	}
	assert.Equal(t, RoleServer, c.Role)
	assert.Equal(t, "chat", c.Subprotocol)
	if assert.NotNil(t, c.KeepAliveInterval) {
		assert.Equal(t, time.Second, *c.KeepAliveInterval)
	}
	assert.Equal(t, 128, c.ReceiveBufferSize)
	assert.Len(t, c.ReceiveBuffer, 32)
	assert.Same(t, pool, c.Pool)
	assert.Equal(t, logger, c.Logger)
}
