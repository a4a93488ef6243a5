package gorilla

import (
	"context"
	"io"
	"time"

	gwebsocket "github.com/gorilla/websocket"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/transport/websocket"
	"github.com/aptpod/wsproto-go/ws"
)

const controlWriteTimeout = time.Second

// Connは、 gorilla/websocketのConnのラッパーです。
type Conn struct {
	wsconn *gwebsocket.Conn
}

// Newは、Connを返却します。
func New(wsconn *gwebsocket.Conn) *Conn {
	return &Conn{
		wsconn: wsconn,
	}
}

// Pingは、WebSocketのPingを送信します。
func (c *Conn) Ping(ctx context.Context) error {
	return handleError(c.wsconn.WriteControl(gwebsocket.PingMessage, []byte{}, controlDeadline(ctx)))
}

// Readerは、WebSocketのReaderを取得します。
func (c *Conn) Reader(ctx context.Context) (websocket.MessageType, io.Reader, error) {
	tp, rd, err := c.wsconn.NextReader()
	if err != nil {
		return 0, nil, handleError(err)
	}
	switch tp {
	case gwebsocket.BinaryMessage:
		return websocket.MessageBinary, rd, nil
	case gwebsocket.TextMessage:
		return websocket.MessageText, rd, nil
	}
	panic("unreachable")
}

// Writerは、WebSocketのWriterを取得します。
func (c *Conn) Writer(ctx context.Context, tp websocket.MessageType) (io.WriteCloser, error) {
	var messageType int
	switch tp {
	case websocket.MessageBinary:
		messageType = gwebsocket.BinaryMessage
	case websocket.MessageText:
		messageType = gwebsocket.TextMessage
	default:
		return nil, errors.Errorf("unknown message type %d: %w", tp, errors.ErrInvalidArgument)
	}
	res, err := c.wsconn.NextWriter(messageType)
	if err != nil {
		return nil, handleError(err)
	}
	return res, nil
}

// Subprotocolは、ネゴシエートされたサブプロトコルを返却します。
func (c *Conn) Subprotocol() string {
	return c.wsconn.Subprotocol()
}

// Closeは、WebSocketをクローズします。
func (c *Conn) Close() error {
	return c.CloseWithStatus(ws.CloseStatusNormalClosure, "")
}

// CloseWithStatusは、WebSocketを指定したステータスでクローズします。
//
// クローズフレームを送信した後、ピアの応答を待たずに下位のコネクションを閉じます。
func (c *Conn) CloseWithStatus(status ws.CloseStatus, reason string) error {
	if err := ws.ValidateCloseStatus(status, reason); err != nil {
		return err
	}
	msg := gwebsocket.FormatCloseMessage(int(status), reason)
	writeErr := c.wsconn.WriteControl(gwebsocket.CloseMessage, msg, time.Now().Add(controlWriteTimeout))
	closeErr := c.wsconn.Close()
	if writeErr != nil {
		return handleError(writeErr)
	}
	return handleError(closeErr)
}

func controlDeadline(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(controlWriteTimeout)
}
