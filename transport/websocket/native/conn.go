package native

import (
	"context"
	"io"

	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/log"
	"github.com/aptpod/wsproto-go/transport/websocket"
	"github.com/aptpod/wsproto-go/ws"
)

// Connは、ws パッケージのエンジンを websocket.Conn として扱うラッパーです。
type Conn struct {
	engine *ws.Conn
	config Config
	logger log.Logger
	logCtx context.Context

	receiveBuffer []byte
	// readerは、最後に返却したメッセージのReaderです。
	reader *messageReader
}

// Dialは、デフォルト設定でWebSocketのコネクションを開きます。
//
// optsはエンジンに渡されます。
func Dial(ctx context.Context, dc websocket.DialConfig, opts ...ws.Option) (*Conn, error) {
	c := defaultConfig
	c.Options = opts
	return DialWithConfig(ctx, dc, c)
}

// DialWithConfigは、WebSocketのコネクションを開きます。
func DialWithConfig(ctx context.Context, dc websocket.DialConfig, c Config) (*Conn, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	res, err := handshake(ctx, dc)
	if err != nil {
		return nil, errors.Errorf("websocket handshake with %s: %w", dc.URL, err)
	}

	opts := make([]ws.Option, 0, len(c.Options)+3)
	opts = append(opts,
		ws.WithRole(ws.RoleClient),
		ws.WithLogger(c.logger()),
	)
	opts = append(opts, c.Options...)
	opts = append(opts, ws.WithSubprotocol(res.subprotocol))
	engine, err := ws.New(res.stream, opts...)
	if err != nil {
		res.stream.Close()
		return nil, err
	}
	return New(engine, c), nil
}

// Newは、確立済みのエンジンからConnを返却します。
func New(engine *ws.Conn, c Config) *Conn {
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = defaultSendBufferSize
	}
	if c.ReceiveBufferSize <= 0 {
		c.ReceiveBufferSize = defaultReceiveBufferSize
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = defaultCloseTimeout
	}
	return &Conn{
		engine:        engine,
		config:        c,
		logger:        c.logger(),
		logCtx:        log.WithTrackConnID(context.Background()),
		receiveBuffer: make([]byte, c.ReceiveBufferSize),
	}
}

// Engineは、内部のエンジンを返却します。
func (c *Conn) Engine() *ws.Conn {
	return c.engine
}

// Subprotocolは、ネゴシエートされたサブプロトコルを返却します。
func (c *Conn) Subprotocol() string {
	return c.engine.Subprotocol()
}

// Pingは、WebSocketのPingを送信します。
func (c *Conn) Ping(ctx context.Context) error {
	return handleError(c.engine.Ping(ctx))
}

// Readerは、次のメッセージのReaderを取得します。
//
// 前のメッセージを読み終えていない場合、残りは読み捨てられ、前のReaderは以降 errors.ErrInvalidOperation を返却します。
// ピアからクローズフレームを受信した場合は、クローズフレームを送り返し errors.ErrConnectionClosed を返却します。
func (c *Conn) Reader(ctx context.Context) (websocket.MessageType, io.Reader, error) {
	if prev := c.reader; prev != nil {
		c.reader = nil
		if err := prev.discard(ctx); err != nil {
			return 0, nil, err
		}
	}
	mr := &messageReader{
		conn: c,
		ctx:  log.WithTrackMessageID(ctx),
	}
	if err := mr.receive(); err != nil {
		return 0, nil, err
	}
	c.reader = mr
	c.logger.Debugf(mr.ctx, "Reader: message started: type=%v", mr.messageType)
	switch mr.messageType {
	case ws.MessageText:
		return websocket.MessageText, mr, nil
	case ws.MessageBinary:
		return websocket.MessageBinary, mr, nil
	}
	panic("unreachable")
}

// Writerは、メッセージのWriterを取得します。
//
// 書き込んだデータは送信バッファが一杯になるたびにフレームとして送信され、Closeで最後のフレームを送信します。
func (c *Conn) Writer(ctx context.Context, tp websocket.MessageType) (io.WriteCloser, error) {
	var typ ws.MessageType
	switch tp {
	case websocket.MessageText:
		typ = ws.MessageText
	case websocket.MessageBinary:
		typ = ws.MessageBinary
	default:
		return nil, errors.Errorf("unknown message type %d: %w", tp, errors.ErrInvalidArgument)
	}
	if state := c.engine.State(); state != ws.StateOpen && state != ws.StateCloseReceived {
		return nil, errors.Errorf("connection is %v: %w", state, errors.ErrConnectionClosed)
	}
	return &messageWriter{
		conn:        c,
		ctx:         ctx,
		messageType: typ,
		buf:         make([]byte, 0, c.config.SendBufferSize),
	}, nil
}

// Closeは、ステータス NormalClosure でクローズハンドシェイクを行います。
func (c *Conn) Close() error {
	return c.CloseWithStatus(ws.CloseStatusNormalClosure, "")
}

// CloseWithStatusは、指定したステータスでクローズハンドシェイクを行います。
//
// CloseTimeout以内にハンドシェイクが完了しない場合、コネクションは中断されます。
func (c *Conn) CloseWithStatus(status ws.CloseStatus, reason string) error {
	if err := ws.ValidateCloseStatus(status, reason); err != nil {
		return err
	}
	switch c.engine.State() {
	case ws.StateClosed:
		return nil
	case ws.StateAborted:
		return errors.Errorf("connection aborted: %w", errors.ErrConnectionClosed)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.config.CloseTimeout)
	defer cancel()
	if err := c.engine.Close(ctx, status, reason); err != nil {
		c.engine.Abort()
		return handleError(err)
	}
	return nil
}

func (c *Conn) answerClose(ctx context.Context) error {
	status, ok := c.engine.CloseStatus()
	if !ok {
		status = ws.CloseStatusNormalClosure
	}
	description := c.engine.CloseStatusDescription()
	c.logger.Infof(c.logCtx, "close frame received: status=%v description=%q", status, description)
	if c.engine.State() == ws.StateCloseReceived {
		if err := c.engine.CloseOutput(ctx, status, ""); err != nil {
			c.logger.Warnf(c.logCtx, "failed to answer close frame: %v", err)
		}
	}
	return errors.Errorf("peer closed with status %v %q: %w", status, description, errors.ErrConnectionClosed)
}

type messageReader struct {
	conn        *Conn
	ctx         context.Context
	messageType ws.MessageType

	pending      []byte
	endOfMessage bool
	err          error
}

func (r *messageReader) receive() error {
	res, err := r.conn.engine.Receive(r.ctx, r.conn.receiveBuffer)
	if err != nil {
		return handleError(err)
	}
	if res.MessageType == ws.MessageClose {
		return r.conn.answerClose(r.ctx)
	}
	r.messageType = res.MessageType
	r.pending = r.conn.receiveBuffer[:res.Count]
	r.endOfMessage = res.EndOfMessage
	return nil
}

func (r *messageReader) Read(b []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	for len(r.pending) == 0 {
		if r.endOfMessage {
			r.conn.logger.Debugf(r.ctx, "Reader: message completed")
			r.err = io.EOF
			return 0, io.EOF
		}
		if err := r.receive(); err != nil {
			r.err = err
			return 0, err
		}
	}
	n := copy(b, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// discardは、メッセージの未読の残りを読み捨て、以降のReadを失敗させます。
func (r *messageReader) discard(ctx context.Context) error {
	var err error
	if r.err == nil && !r.endOfMessage {
		r.ctx = ctx
		r.conn.logger.Debugf(r.ctx, "Reader: discarding unread message")
		for err == nil && !r.endOfMessage {
			err = r.receive()
		}
	}
	r.pending = nil
	r.err = errors.Errorf("reader of a previous message: %w", errors.ErrInvalidOperation)
	return err
}

type messageWriter struct {
	conn        *Conn
	ctx         context.Context
	messageType ws.MessageType
	buf         []byte
	closed      bool
}

func (w *messageWriter) Write(b []byte) (int, error) {
	if w.closed {
		return 0, errors.Errorf("write to closed message writer: %w", errors.ErrInvalidOperation)
	}
	var written int
	for len(b) > 0 {
		n := copy(w.buf[len(w.buf):cap(w.buf)], b)
		w.buf = w.buf[:len(w.buf)+n]
		b = b[n:]
		written += n
		if len(w.buf) == cap(w.buf) && len(b) > 0 {
			if err := w.flush(false); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func (w *messageWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.flush(true)
}

func (w *messageWriter) flush(endOfMessage bool) error {
	err := w.conn.engine.Send(w.ctx, w.buf, w.messageType, endOfMessage)
	w.buf = w.buf[:0]
	return handleError(err)
}

func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errors.ErrConnectionClosedPrematurely) ||
		errors.Is(err, errors.ErrCanceled) ||
		errors.Is(err, errors.ErrInvalidState) {
		return errors.Errorf("%w: %w", errors.ErrConnectionClosed, err)
	}
	return err
}
