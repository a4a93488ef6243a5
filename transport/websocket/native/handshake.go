package native

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobwas "github.com/gobwas/ws"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/transport/websocket"
)

// maxResponseHeaderSizeは、検証のために記録するハンドシェイクのレスポンスの最大バイト数です。
const maxResponseHeaderSize = 16 << 10

// reservedRequestHeadersは、ハンドシェイクで設定するため呼び出し元のヘッダーから除くヘッダーです。
var reservedRequestHeaders = []string{
	"Host",
	"Upgrade",
	"Connection",
	"Sec-WebSocket-Key",
	"Sec-WebSocket-Version",
	"Sec-WebSocket-Protocol",
	"Sec-WebSocket-Extensions",
}

// handshakeResultは、オープニングハンドシェイクの結果です。
type handshakeResult struct {
	stream      io.ReadWriteCloser
	subprotocol string
}

// bufferedConnは、ハンドシェイクのレスポンス以降に読み込み済みのバイトを先に返すnet.Connです。
type bufferedConn struct {
	net.Conn
	rd io.Reader
}

func (c *bufferedConn) Read(b []byte) (int, error) {
	return c.rd.Read(b)
}

// responseRecorderは、ハンドシェイクのレスポンスを記録するnet.Connです。
type responseRecorder struct {
	net.Conn
	buf bytes.Buffer
}

func (r *responseRecorder) Read(b []byte) (int, error) {
	n, err := r.Conn.Read(b)
	if room := maxResponseHeaderSize - r.buf.Len(); room > 0 {
		r.buf.Write(b[:min(n, room)])
	}
	return n, err
}

func (r *responseRecorder) header() (http.Header, error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(r.buf.Bytes())), nil)
	if err != nil {
		return nil, errors.Errorf("parse upgrade response: %v: %w", err, errors.ErrHandshake)
	}
	resp.Body.Close()
	return resp.Header, nil
}

func handshake(ctx context.Context, c websocket.DialConfig) (*handshakeResult, error) {
	if err := validateSubprotocols(c.Subprotocols); err != nil {
		return nil, err
	}
	u, err := parseURL(c.URL)
	if err != nil {
		return nil, err
	}
	if c.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.DialTimeout)
		defer cancel()
	}

	var (
		dialErr   error
		tlsDialed bool
		recorder  *responseRecorder
	)
	d := gobwas.Dialer{
		Protocols: c.Subprotocols,
		Header:    gobwas.HandshakeHeaderHTTP(requestHeader(c)),
		NetDial: func(ctx context.Context, _, addr string) (net.Conn, error) {
			var conn net.Conn
			conn, tlsDialed, dialErr = dialStream(ctx, c, u, addr)
			return conn, dialErr
		},
		TLSClient: func(conn net.Conn, hostname string) net.Conn {
			if tlsDialed {
				return conn
			}
			return tls.Client(conn, tlsConfig(c.TLSConfig, hostname))
		},
		WrapConn: func(conn net.Conn) net.Conn {
			recorder = &responseRecorder{Conn: conn}
			return recorder
		},
	}
	conn, br, hs, err := d.Dial(ctx, u.String())
	if err != nil {
		if dialErr != nil {
			return nil, dialErr
		}
		return nil, errors.Errorf("upgrade %s: %w: %w", u.Host, errors.ErrHandshake, err)
	}
	header, err := recorder.header()
	if err == nil {
		err = validateResponseHeader(header)
	}
	if err != nil {
		conn.Close()
		return nil, err
	}

	var stream net.Conn = recorder.Conn
	if br != nil {
		stream = &bufferedConn{Conn: recorder.Conn, rd: io.MultiReader(io.LimitReader(br, int64(br.Buffered())), recorder.Conn)}
	}
	return &handshakeResult{stream: stream, subprotocol: hs.Protocol}, nil
}

// parseURLは、接続先URLを解析し、スキームを ws または wss に揃えます。
func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Errorf("invalid url %q: %v: %w", rawURL, err, errors.ErrInvalidArgument)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "http":
		u.Scheme = "ws"
	case "wss", "https":
		u.Scheme = "wss"
	default:
		return nil, errors.Errorf("unsupported url scheme %q: %w", u.Scheme, errors.ErrInvalidArgument)
	}
	if u.Hostname() == "" {
		return nil, errors.Errorf("missing host in url %q: %w", rawURL, errors.ErrInvalidArgument)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

func requestHeader(c websocket.DialConfig) http.Header {
	h := c.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	for _, name := range reservedRequestHeaders {
		h.Del(name)
	}
	if c.Token != nil {
		name := c.Token.Header
		if name == "" {
			name = "Authorization"
		}
		h.Set(name, c.Token.Token)
	}
	return h
}

func tlsConfig(base *tls.Config, hostname string) *tls.Config {
	cfg := &tls.Config{}
	if base != nil {
		cfg = base.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = hostname
	}
	return cfg
}

// dialStreamは、addrへのストリームを確立します。2番目の戻り値は、TLS接続済みの場合にtrueです。
func dialStream(ctx context.Context, c websocket.DialConfig, u *url.URL, addr string) (net.Conn, bool, error) {
	secure := u.Scheme == "wss"
	dialContext := c.DialContext
	if dialContext == nil {
		dialContext = (&net.Dialer{}).DialContext
	}

	proxyURL, err := proxyURLFor(c, u, addr, secure)
	if err != nil {
		return nil, false, err
	}

	switch {
	case proxyURL != nil:
		conn, err := dialContext(ctx, "tcp", proxyAddress(proxyURL))
		if err != nil {
			return nil, false, errors.Errorf("dial proxy %s: %w", proxyURL.Host, err)
		}
		if err := connectProxy(ctx, conn, proxyURL, addr); err != nil {
			conn.Close()
			return nil, false, err
		}
		return conn, false, nil
	case secure && c.DialTLSContext != nil:
		conn, err := c.DialTLSContext(ctx, "tcp", addr)
		if err != nil {
			return nil, false, errors.Errorf("dial tls %s: %w", addr, err)
		}
		return conn, true, nil
	}
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, false, errors.Errorf("dial %s: %w", addr, err)
	}
	return conn, false, nil
}

func proxyURLFor(c websocket.DialConfig, u *url.URL, addr string, secure bool) (*url.URL, error) {
	if c.Proxy == nil {
		return nil, nil
	}
	target := *u
	target.Host = addr
	target.Scheme = "http"
	if secure {
		target.Scheme = "https"
	}
	proxyURL, err := c.Proxy(&http.Request{Method: http.MethodGet, URL: &target, Header: http.Header{}})
	if err != nil {
		return nil, errors.Errorf("resolve proxy: %w", err)
	}
	return proxyURL, nil
}

func proxyAddress(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	if strings.EqualFold(u.Scheme, "https") {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}

func connectProxy(ctx context.Context, conn net.Conn, proxyURL *url.URL, addr string) error {
	stop := interruptOnDone(ctx, conn)
	defer stop()

	header := http.Header{}
	if user := proxyURL.User; user != nil {
		password, _ := user.Password()
		credential := base64.StdEncoding.EncodeToString([]byte(user.Username() + ":" + password))
		header.Set("Proxy-Authorization", "Basic "+credential)
	}
	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: header,
	}
	if err := req.Write(conn); err != nil {
		return errors.Errorf("write proxy request: %w", err)
	}

	// CONNECTの応答以降はトンネルのバイト列となるため、1バイトずつ読み込みます。
	resp, err := http.ReadResponse(bufio.NewReaderSize(&oneByteReader{conn}, 16), req)
	if err != nil {
		return errors.Errorf("read proxy response: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("proxy %s responded %q: %w", proxyURL.Host, resp.Status, errors.ErrHandshake)
	}
	return nil
}

type oneByteReader struct {
	r io.Reader
}

func (r *oneByteReader) Read(b []byte) (int, error) {
	if len(b) > 1 {
		b = b[:1]
	}
	return r.r.Read(b)
}

// validateResponseHeaderは、値の検証済みのハンドシェイクヘッダーが重複していないことを確認します。
func validateResponseHeader(h http.Header) error {
	for _, name := range []string{"Connection", "Upgrade", "Sec-WebSocket-Accept"} {
		if n := len(h.Values(name)); n != 1 {
			return errors.Errorf("expected exactly one %s header, got %d: %w", name, n, errors.ErrHandshake)
		}
	}
	if n := len(h.Values("Sec-WebSocket-Protocol")); n > 1 {
		return errors.Errorf("expected at most one Sec-WebSocket-Protocol header, got %d: %w", n, errors.ErrHandshake)
	}
	return nil
}

// interruptOnDoneは、ctxが終了したときにconnの読み書きを中断させます。
func interruptOnDone(ctx context.Context, conn net.Conn) (stop func()) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stopAfter := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0))
	})
	return func() {
		stopAfter()
		conn.SetDeadline(time.Time{})
	}
}
