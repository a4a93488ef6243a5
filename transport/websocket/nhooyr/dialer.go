package nhooyr

import (
	"context"
	"net/http"
	"net/http/httputil"

	nwebsocket "nhooyr.io/websocket"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/transport/websocket"
)

// Dialは、WebSocketのコネクションを開きます。
//
// `c.Token` はWebSocket接続時の認証ヘッダーに使用します。
// `c.TLSConfig` がnilの場合は無視します。
func Dial(ctx context.Context, c websocket.DialConfig) (websocket.Conn, error) {
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

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if c.TLSConfig != nil {
		tr.TLSClientConfig = c.TLSConfig
	}
	if c.DialContext != nil {
		tr.DialContext = c.DialContext
	}
	if c.DialTLSContext != nil {
		tr.DialTLSContext = c.DialTLSContext
	}
	if c.Proxy != nil {
		tr.Proxy = c.Proxy
	}

	dialOpts := nwebsocket.DialOptions{
		CompressionMode: nwebsocket.CompressionNoContextTakeover,
		HTTPHeader:      header,
		HTTPClient:      &http.Client{Transport: tr},
		Subprotocols:    c.Subprotocols,
	}

	if c.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.DialTimeout)
		defer cancel()
	}

	//nolint
	wsconn, resp, err := nwebsocket.Dial(ctx, c.URL, &dialOpts)
	if err != nil {
		if resp == nil {
			return nil, err
		}
		dump, _ := httputil.DumpResponse(resp, false)
		return nil, errors.Errorf("dial failed with error response[%s]: %v: %w", dump, err, errors.ErrHandshake)
	}
	return New(wsconn), nil
}
