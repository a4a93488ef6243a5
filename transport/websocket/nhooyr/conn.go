package nhooyr

import (
	"context"
	"io"

	nwebsocket "nhooyr.io/websocket"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/transport/websocket"
	"github.com/aptpod/wsproto-go/ws"
)

// Connは、 nhooyr.io/websocketのConnのラッパーです。
type Conn struct {
	wsconn *nwebsocket.Conn
}

// Newは、Connを返却します。
func New(wsconn *nwebsocket.Conn) *Conn {
	return &Conn{
		wsconn: wsconn,
	}
}

// Pingは、WebSocketのPingを送信し、Pongを待ちます。
//
// Pongを受信するには、別のゴルーチンでReaderを呼び出している必要があります。
func (c *Conn) Ping(ctx context.Context) error {
	return handleError(c.wsconn.Ping(ctx))
}

// Readerは、WebSocketのReaderを取得します。
func (c *Conn) Reader(ctx context.Context) (websocket.MessageType, io.Reader, error) {
	tp, rd, err := c.wsconn.Reader(ctx)
	if err != nil {
		return 0, nil, handleError(err)
	}
	switch tp {
	case nwebsocket.MessageBinary:
		return websocket.MessageBinary, rd, nil
	case nwebsocket.MessageText:
		return websocket.MessageText, rd, nil
	}
	panic("unreachable")
}

// Writerは、WebSocketのWriterを取得します。
func (c *Conn) Writer(ctx context.Context, tp websocket.MessageType) (io.WriteCloser, error) {
	var messageType nwebsocket.MessageType
	switch tp {
	case websocket.MessageBinary:
		messageType = nwebsocket.MessageBinary
	case websocket.MessageText:
		messageType = nwebsocket.MessageText
	default:
		return nil, errors.Errorf("unknown message type %d: %w", tp, errors.ErrInvalidArgument)
	}
	wr, err := c.wsconn.Writer(ctx, messageType)
	if err != nil {
		return nil, handleError(err)
	}
	return wr, nil
}

// Subprotocolは、ネゴシエートされたサブプロトコルを返却します。
func (c *Conn) Subprotocol() string {
	return c.wsconn.Subprotocol()
}

// Closeは、WebSocketをクローズします。
func (c *Conn) Close() error {
	return c.CloseWithStatus(ws.CloseStatusNormalClosure, "")
}

// CloseWithStatusは、指定したステータスでクローズハンドシェイクを行います。
func (c *Conn) CloseWithStatus(status ws.CloseStatus, reason string) error {
	if err := ws.ValidateCloseStatus(status, reason); err != nil {
		return err
	}
	return handleError(c.wsconn.Close(nwebsocket.StatusCode(status), reason))
}
