package native_test

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gwebsocket "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	nwebsocket "nhooyr.io/websocket"

	"github.com/aptpod/wsproto-go/transport/websocket"
	. "github.com/aptpod/wsproto-go/transport/websocket/native"
	"github.com/aptpod/wsproto-go/ws"
)

const testTimeout = 10 * time.Second

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func nhooyrEchoHandler(subprotocols ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsconn, err := nwebsocket.Accept(w, r, &nwebsocket.AcceptOptions{
			Subprotocols:       subprotocols,
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer wsconn.Close(nwebsocket.StatusInternalError, "")
		ctx := context.Background()
		for {
			typ, rd, err := wsconn.Reader(ctx)
			if err != nil {
				return
			}
			wr, err := wsconn.Writer(ctx, typ)
			if err != nil {
				return
			}
			if _, err := io.Copy(wr, rd); err != nil {
				return
			}
			if err := wr.Close(); err != nil {
				return
			}
		}
	}
}

func gorillaEchoHandler(subprotocols ...string) http.HandlerFunc {
	upgrader := gwebsocket.Upgrader{Subprotocols: subprotocols}
	return func(w http.ResponseWriter, r *http.Request) {
		wsconn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer wsconn.Close()
		for {
			typ, rd, err := wsconn.NextReader()
			if err != nil {
				return
			}
			wr, err := wsconn.NextWriter(typ)
			if err != nil {
				return
			}
			if _, err := io.Copy(wr, rd); err != nil {
				return
			}
			if err := wr.Close(); err != nil {
				return
			}
		}
	}
}

func startServer(t *testing.T, h http.Handler) string {
	t.Helper()
	s := httptest.NewServer(h)
	t.Cleanup(s.Close)
	return wsURL(s.URL)
}

// startRawServerは、ハンドシェイクのレスポンスをそのまま書き込むサーバーを起動します。
//
// respondはリクエストの Sec-WebSocket-Key を受け取り、レスポンスのバイト列を返します。
func startRawServer(t *testing.T, respond func(key string) string) string {
	t.Helper()
	return startServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, brw, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		brw.WriteString(respond(r.Header.Get("Sec-WebSocket-Key")))
		brw.Flush()
		io.Copy(io.Discard, brw)
	}))
}

// acceptKeyは、Sec-WebSocket-Keyに対応する Sec-WebSocket-Accept の値を返します。
func acceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key + "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func switchingProtocols(key string, extraHeaders ...string) string {
	var sb strings.Builder
	sb.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	sb.WriteString("Upgrade: websocket\r\n")
	sb.WriteString("Connection: Upgrade\r\n")
	fmt.Fprintf(&sb, "Sec-WebSocket-Accept: %s\r\n", acceptKey(key))
	for _, h := range extraHeaders {
		sb.WriteString(h + "\r\n")
	}
	sb.WriteString("\r\n")
	return sb.String()
}

type connectProxy struct {
	URL string

	mu            sync.Mutex
	authorization string
	requests      int
}

func (p *connectProxy) Authorization() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authorization
}

func (p *connectProxy) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

// startConnectProxyは、CONNECTメソッドのみを受け付けるHTTPプロキシを起動します。
func startConnectProxy(t *testing.T, status int) *connectProxy {
	t.Helper()
	p := &connectProxy{}
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.authorization = r.Header.Get("Proxy-Authorization")
		p.requests++
		p.mu.Unlock()
		if r.Method != http.MethodConnect {
			http.Error(w, "", http.StatusMethodNotAllowed)
			return
		}
		if status != http.StatusOK {
			http.Error(w, "", status)
			return
		}
		upstream, err := net.Dial("tcp", r.Host)
		if err != nil {
			http.Error(w, "", http.StatusBadGateway)
			return
		}
		defer upstream.Close()
		conn, brw, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		brw.WriteString("HTTP/1.1 200 Connection established\r\n\r\n")
		brw.Flush()

		done := make(chan struct{}, 2)
		go func() {
			io.Copy(upstream, brw)
			done <- struct{}{}
		}()
		go func() {
			io.Copy(conn, upstream)
			done <- struct{}{}
		}()
		<-done
	}))
	t.Cleanup(s.Close)
	p.URL = s.URL
	return p
}

func basicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func dial(t *testing.T, dc websocket.DialConfig, opts ...ws.Option) *Conn {
	t.Helper()
	opts = append([]ws.Option{ws.WithKeepAliveInterval(0)}, opts...)
	conn, err := Dial(testContext(t), dc, opts...)
	require.NoError(t, err)
	t.Cleanup(conn.Engine().Abort)
	return conn
}

func writeMessage(t *testing.T, conn websocket.Conn, typ websocket.MessageType, msg []byte) {
	t.Helper()
	wr, err := conn.Writer(testContext(t), typ)
	require.NoError(t, err)
	_, err = wr.Write(msg)
	require.NoError(t, err)
	require.NoError(t, wr.Close())
}

func readMessage(t *testing.T, conn websocket.Conn) (websocket.MessageType, []byte) {
	t.Helper()
	typ, rd, err := conn.Reader(testContext(t))
	require.NoError(t, err)
	got, err := io.ReadAll(bufio.NewReader(rd))
	require.NoError(t, err)
	return typ, got
}
