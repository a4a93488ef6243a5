package ws

import (
	"time"

	"github.com/AlekSi/pointer"

	"github.com/aptpod/wsproto-go/bufpool"
	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/log"
)

const (
	defaultKeepAliveInterval = 30 * time.Second
	defaultReceiveBufferSize = 4096
)

var defaultConfig = Config{
	Role:              RoleClient,
	Subprotocol:       "",
	KeepAliveInterval: nil,
	ReceiveBufferSize: defaultReceiveBufferSize,
	ReceiveBuffer:     nil,
	Pool:              nil,
	Logger:            log.NewNop(),
}

// Configは、Connの設定です。
type Config struct {
	// エンジンの役割
	Role Role

	// ハンドシェイクでネゴシエートされたサブプロトコル
	Subprotocol string

	// Pingを送信する間隔
	//
	// nilの場合は30秒、0の場合はPingを送信しません。
	KeepAliveInterval *time.Duration

	// 受信バッファのサイズ
	//
	// ReceiveBufferを指定しない場合に、バッファプールから借りる受信バッファの長さです。
	ReceiveBufferSize int

	// 受信バッファ
	//
	// 14バイト以上の場合、プールから借りずにこのバッファを受信バッファとして使用します。
	ReceiveBuffer []byte

	// バッファプール
	//
	// nilの場合は bufpool.Default を使用します。
	Pool *bufpool.Pool

	// ロガー
	Logger log.Logger
}

// DefaultConfigは、デフォルトのConfigを取得します。
func DefaultConfig() *Config {
	c := defaultConfig
	return &c
}

func (c *Config) validate() error {
	if c.ReceiveBufferSize < 0 {
		return errors.Errorf("receive buffer size must not be negative, got %d: %w", c.ReceiveBufferSize, errors.ErrInvalidArgument)
	}
	if c.KeepAliveInterval != nil && *c.KeepAliveInterval < 0 {
		return errors.Errorf("keep-alive interval must not be negative, got %v: %w", *c.KeepAliveInterval, errors.ErrInvalidArgument)
	}
	if c.Role != RoleClient && c.Role != RoleServer {
		return errors.Errorf("unknown role %v: %w", c.Role, errors.ErrInvalidArgument)
	}
	return nil
}

func (c *Config) keepAliveInterval() time.Duration {
	if c.KeepAliveInterval == nil {
		return defaultKeepAliveInterval
	}
	return *c.KeepAliveInterval
}

// Optionは、Connのオプションです。
type Option func(*Config)

// WithRoleは、エンジンの役割を設定します。
func WithRole(r Role) Option {
	return func(c *Config) {
		c.Role = r
	}
}

// WithSubprotocolは、ネゴシエートされたサブプロトコルを設定します。
func WithSubprotocol(s string) Option {
	return func(c *Config) {
		c.Subprotocol = s
	}
}

// WithKeepAliveIntervalは、Pingを送信する間隔を設定します。
//
// 0を指定するとPingを送信しません。
func WithKeepAliveInterval(d time.Duration) Option {
	return func(c *Config) {
		c.KeepAliveInterval = pointer.ToDuration(d)
	}
}

// WithReceiveBufferSizeは、受信バッファのサイズを設定します。
func WithReceiveBufferSize(n int) Option {
	return func(c *Config) {
		c.ReceiveBufferSize = n
	}
}

// WithReceiveBufferは、受信バッファを設定します。
func WithReceiveBuffer(b []byte) Option {
	return func(c *Config) {
		c.ReceiveBuffer = b
	}
}

// WithPoolは、バッファプールを設定します。
func WithPool(p *bufpool.Pool) Option {
	return func(c *Config) {
		c.Pool = p
	}
}

// WithLoggerは、ロガーを設定します。
func WithLogger(l log.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
