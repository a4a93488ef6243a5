package websocket

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/log"
)

// DialConfigは、DialFuncに渡される接続設定です。
type DialConfig struct {
	// URLは、接続先URLです。
	URL string
	// Tokenは、接続時に認証ヘッダーへ設定するトークンです。nilの場合は設定しません。
	Token *Token
	// Headerは、ハンドシェイクのリクエストに追加するヘッダーです。
	Header http.Header
	// TLSConfigは、TLS設定です。
	TLSConfig *tls.Config

	// DialContextはWebSocketトランスポートの内部で使用するDialContextを設定します。
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)
	// DialTLSContextはWebSocketトランスポートの内部で使用するDialTLSContextを設定します。
	DialTLSContext func(ctx context.Context, network, addr string) (net.Conn, error)

	// Proxyは、HTTPプロキシを設定します。
	//
	// http.Transport.Proxyを参照してください。
	Proxy func(*http.Request) (*url.URL, error)

	// DialTimeoutは、WebSocket接続のタイムアウトです。
	// 0に設定された場合、タイムアウトは設定されません。
	DialTimeout time.Duration

	// Subprotocolsは、ネゴシエーションを要求するサブプロトコルです。
	Subprotocols []string
}

// DialFunc はConnを返却する関数です。
//
// 実装したDialFuncは、RegisterDialFuncを使用して登録します。
type DialFunc func(ctx context.Context, c DialConfig) (Conn, error)

var (
	dialFuncMu sync.RWMutex
	dialFunc   DialFunc
)

// RegisterDialFuncは、DialFuncを登録します。
//
// DialFuncを登録すると、WebSocketトランスポートはライブラリ内で登録されたDialFuncを使用します。
// 2回以上登録するとパニックします。
func RegisterDialFunc(f DialFunc) {
	dialFuncMu.Lock()
	defer dialFuncMu.Unlock()
	if dialFunc != nil {
		panic("already registered dialFunc")
	}
	dialFunc = f
}

func registeredDialFunc() DialFunc {
	dialFuncMu.RLock()
	defer dialFuncMu.RUnlock()
	return dialFunc
}

var defaultDialerConfig = DialerConfig{
	Path:        "/",
	DialTimeout: 10 * time.Second,
	MessageType: MessageBinary,
	Logger:      log.NewNop(),
}

// DialerConfigはDialerの設定です。
type DialerConfig struct {
	// Pathはパスを指定します
	Path string

	// EnableTLSは TLSアクセスするかどうかを設定します。
	EnableTLS bool

	// TokenSourceは、接続時に認証ヘッダーへ設定するトークンを取得します。
	// Dialerは取得されたトークンを認証ヘッダーとして利用します。
	TokenSource TokenSource

	// TLSConfigは、TLS設定です。
	TLSConfig *tls.Config

	// DialContextはWebSocketトランスポートの内部で使用するDialContextを設定します。
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)

	// DialTLSContextはWebSocketトランスポートの内部で使用するDialTLSContextを設定します。
	DialTLSContext func(ctx context.Context, network, addr string) (net.Conn, error)

	// Proxyは、HTTPプロキシを設定します。
	//
	// http.Transport.Proxyを参照してください。
	Proxy func(*http.Request) (*url.URL, error)

	// DialTimeoutは、WebSocket接続のタイムアウトです。
	// 0に設定された場合は、デフォルト値(10秒)が使用されます。
	DialTimeout time.Duration

	// Subprotocolsは、ネゴシエーションを要求するサブプロトコルです。
	Subprotocols []string

	// MessageTypeは、トランスポートが送信するメッセージのタイプです。
	MessageType MessageType

	// DialFuncは、このDialerで使用するDialFuncです。
	// nilの場合は RegisterDialFunc で登録されたDialFuncを使用します。
	DialFunc DialFunc

	// ロガー
	Logger log.Logger
}

// Dialは、デフォルト設定を使ってトランスポート接続を開始します。
func Dial(ctx context.Context, address string) (*Transport, error) {
	return DialWithConfig(ctx, address, defaultDialerConfig)
}

// DialWithConfigは、トランスポート接続を開始します。
func DialWithConfig(ctx context.Context, address string, cc DialerConfig) (*Transport, error) {
	return NewDialer(cc).Dial(ctx, address)
}

// Dialerは、トランスポート接続を開始します。
type Dialer struct {
	DialerConfig
}

// NewDefaultDialerは、デフォルト設定のDialerを返却します。
func NewDefaultDialer() *Dialer {
	return NewDialer(defaultDialerConfig)
}

// NewDialerは、Dialerを返却します。
func NewDialer(c DialerConfig) *Dialer {
	return &Dialer{DialerConfig: c}
}

// Dialは、トランスポート接続を開始します。
//
// addressは ホスト:ポート（e.g. 127.0.0.1:8080）という形式で指定します。
func (d *Dialer) Dial(ctx context.Context, address string) (*Transport, error) {
	logger := d.Logger
	if logger == nil {
		logger = defaultDialerConfig.Logger
	}
	dialTimeout := d.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = defaultDialerConfig.DialTimeout
	}
	f := d.DialFunc
	if f == nil {
		f = registeredDialFunc()
	}
	if f == nil {
		return nil, errors.ErrNoDialFunc
	}

	wsURL, err := d.url(address)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "Dial: URL generated: %s", wsURL)

	var tk *Token
	if d.TokenSource != nil {
		tk, err = d.TokenSource.Token()
		if err != nil {
			return nil, errors.Errorf("failed retrieving token: %w", err)
		}
		if tk != nil && tk.Header == "" {
			tk.Header = "Authorization"
		}
	}

	wsconn, err := f(ctx, DialConfig{
		URL:            wsURL,
		Token:          tk,
		TLSConfig:      d.TLSConfig,
		DialContext:    d.DialContext,
		DialTLSContext: d.DialTLSContext,
		Proxy:          d.Proxy,
		DialTimeout:    dialTimeout,
		Subprotocols:   d.Subprotocols,
	})
	if err != nil {
		return nil, errors.Errorf("failed dialing to [%s]: %w", wsURL, err)
	}
	logger.Infof(ctx, "Dial: connected to %s subprotocol=%q", wsURL, wsconn.Subprotocol())

	return New(Config{
		Conn:        wsconn,
		MessageType: d.MessageType,
	}), nil
}

func (d *Dialer) url(address string) (string, error) {
	schema := "ws"
	if d.EnableTLS {
		schema = "wss"
	}
	path := d.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := fmt.Sprintf("%s://%s%s", schema, address, path)
	if _, err := url.Parse(u); err != nil {
		return "", errors.Errorf("invalid url: %w", err)
	}
	return u, nil
}
