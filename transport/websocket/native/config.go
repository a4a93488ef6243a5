package native

import (
	"context"
	"time"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/log"
	"github.com/aptpod/wsproto-go/transport/websocket"
	"github.com/aptpod/wsproto-go/ws"
)

const (
	defaultSendBufferSize    = 4096
	defaultReceiveBufferSize = 4096
	defaultCloseTimeout      = 5 * time.Second
)

var defaultConfig = Config{
	SendBufferSize:    defaultSendBufferSize,
	ReceiveBufferSize: defaultReceiveBufferSize,
	CloseTimeout:      defaultCloseTimeout,
	Options:           nil,
	Logger:            log.NewNop(),
}

// Configは、エンジンを使用するWebSocketコネクションの設定です。
type Config struct {
	// SendBufferSizeは、Writerが1フレームとして送信するまで保持するバイト数です。
	SendBufferSize int

	// ReceiveBufferSizeは、Readerが1回の受信で使用するバッファのサイズです。
	ReceiveBufferSize int

	// CloseTimeoutは、Closeでクローズハンドシェイクの完了を待つ時間です。
	CloseTimeout time.Duration

	// Optionsは、エンジンに渡すオプションです。
	Options []ws.Option

	// ロガー
	Logger log.Logger
}

// DefaultConfigは、デフォルトのConfigを取得します。
func DefaultConfig() *Config {
	c := defaultConfig
	return &c
}

func (c *Config) validate() error {
	if c.SendBufferSize <= 0 {
		return errors.Errorf("send buffer size must be positive, got %d: %w", c.SendBufferSize, errors.ErrInvalidArgument)
	}
	if c.ReceiveBufferSize <= 0 {
		return errors.Errorf("receive buffer size must be positive, got %d: %w", c.ReceiveBufferSize, errors.ErrInvalidArgument)
	}
	if c.CloseTimeout <= 0 {
		return errors.Errorf("close timeout must be positive, got %v: %w", c.CloseTimeout, errors.ErrInvalidArgument)
	}
	return nil
}

func (c *Config) logger() log.Logger {
	if c.Logger == nil {
		return defaultConfig.Logger
	}
	return c.Logger
}

// NewDialFuncは、cの設定でコネクションを開く websocket.DialFunc を返却します。
//
//	websocket.RegisterDialFunc(native.NewDialFunc(*native.DefaultConfig()))
func NewDialFunc(c Config) websocket.DialFunc {
	return func(ctx context.Context, dc websocket.DialConfig) (websocket.Conn, error) {
		return DialWithConfig(ctx, dc, c)
	}
}
