package gorilla

import (
	"context"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	gwebsocket "github.com/gorilla/websocket"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/transport/websocket"
)

// Dialは、WebSocketのコネクションを開きます。
//
// `c.Token` はWebSocket接続時の認証ヘッダーに使用します。
func Dial(ctx context.Context, c websocket.DialConfig) (websocket.Conn, error) {
	wsURL, err := url.Parse(c.URL)
	if err != nil {
		return nil, errors.Errorf("invalid url %q: %v: %w", c.URL, err, errors.ErrInvalidArgument)
	}
	switch strings.ToLower(wsURL.Scheme) {
	case "http":
		wsURL.Scheme = "ws"
	case "https":
		wsURL.Scheme = "wss"
	}

	header := http.Header{}
	for k, vs := range c.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	if c.Token != nil {
		name := c.Token.Header
		if name == "" {
			name = "Authorization"
		}
		header.Set(name, c.Token.Token)
	}

	d := gwebsocket.Dialer{
		NetDialContext:   c.DialContext,
		Proxy:            c.Proxy,
		TLSClientConfig:  c.TLSConfig,
		HandshakeTimeout: c.DialTimeout,
		Subprotocols:     c.Subprotocols,
	}
	// gorilla/websocket v1.4 はTLS用のダイアル関数を持たないため、
	// プロキシを使用しない場合はTLS済みのコネクションを ws スキームで使用します。
	if wsURL.Scheme == "wss" && c.DialTLSContext != nil && c.Proxy == nil {
		d.NetDialContext = c.DialTLSContext
		if wsURL.Port() == "" {
			wsURL.Host = net.JoinHostPort(wsURL.Hostname(), "443")
		}
		wsURL.Scheme = "ws"
	}

	if c.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.DialTimeout)
		defer cancel()
	}

	//nolint
	wsconn, resp, err := d.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		if resp == nil {
			return nil, err
		}
		dump, _ := httputil.DumpResponse(resp, true)
		return nil, errors.Errorf("dial failed with error response[%s]: %v: %w", dump, err, errors.ErrHandshake)
	}
	return New(wsconn), nil
}
