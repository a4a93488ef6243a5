package ws

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aptpod/wsproto-go/bufpool"
	"github.com/aptpod/wsproto-go/errors"
	"github.com/aptpod/wsproto-go/log"
)

// Connは、WebSocketのコネクションです。
type Conn struct {
	stream      Stream
	role        Role
	subprotocol string
	pool        *bufpool.Pool
	logger      log.Logger
	logCtx      context.Context

	state *connState

	// コネクションが破棄されるとキャンセルされます。
	ctx         context.Context
	cancel      context.CancelFunc
	disposeOnce sync.Once

	sendSem             chan struct{}
	sending             atomic.Bool
	lastSendWasFragment bool

	receiveSem            chan struct{}
	receiving             atomic.Bool
	receiveBuffer         []byte
	receiveBufferFromPool bool
	receiveBufferOffset   int
	receiveBufferCount    int
	// lastReceiveHeader.payloadLengthは、受信中のフレームの未読のペイロード長です。
	lastReceiveHeader  frameHeader
	receivedMaskOffset int
	utf8               utf8Validator
}

// Newは、接続済みのストリームからConnを生成します。
//
// ストリームの所有権はConnに移り、コネクションの終了時にクローズされます。
func New(stream Stream, opts ...Option) (*Conn, error) {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return NewWithConfig(stream, *c)
}

// NewWithConfigは、設定を指定してConnを生成します。
func NewWithConfig(stream Stream, c Config) (*Conn, error) {
	if stream == nil {
		return nil, errors.Errorf("stream is nil: %w", errors.ErrInvalidArgument)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.Logger == nil {
		c.Logger = log.NewNop()
	}
	if c.Pool == nil {
		c.Pool = bufpool.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	conn := &Conn{
		stream:      stream,
		role:        c.Role,
		subprotocol: c.Subprotocol,
		pool:        c.Pool,
		logger:      c.Logger,
		logCtx:      log.WithTrackConnID(context.Background()),
		state:       newConnState(StateOpen),
		ctx:         ctx,
		cancel:      cancel,
		sendSem:     make(chan struct{}, 1),
		receiveSem:  make(chan struct{}, 1),
		lastReceiveHeader: frameHeader{
			opcode: opText,
			fin:    true,
		},
	}
	if len(c.ReceiveBuffer) >= maxMessageHeaderLength {
		conn.receiveBuffer = c.ReceiveBuffer
	} else {
		conn.receiveBuffer = conn.pool.Rent(max(c.ReceiveBufferSize, maxMessageHeaderLength))
		conn.receiveBufferFromPool = true
	}

	if interval := c.keepAliveInterval(); interval > 0 {
		go conn.keepAliveLoop(interval)
	}
	conn.logger.Debugf(conn.logCtx, "websocket connection opened: role=%v subprotocol=%q", conn.role, conn.subprotocol)
	return conn, nil
}

// Stateは、現在のコネクションの状態を返します。
func (c *Conn) State() State {
	return c.state.Current()
}

// CloseStatusは、ピアから受信したクローズステータスを返します。
//
// クローズフレームを受信していない場合、2番目の戻り値はfalseです。
func (c *Conn) CloseStatus() (CloseStatus, bool) {
	return c.state.CloseStatus()
}

// CloseStatusDescriptionは、ピアから受信したクローズ理由を返します。
func (c *Conn) CloseStatusDescription() string {
	return c.state.CloseStatusDescription()
}

// Subprotocolは、ネゴシエートされたサブプロトコルを返します。
func (c *Conn) Subprotocol() string {
	return c.subprotocol
}

// Doneは、コネクションが Closed または Aborted になるとクローズされるチャンネルを返します。
func (c *Conn) Done() <-chan struct{} {
	return c.state.Done()
}

// Abortは、クローズハンドシェイクを行わずにコネクションを中断します。
//
// ストリームはクローズされ、実行中の送受信はエラーを返します。
func (c *Conn) Abort() {
	if c.state.abort() {
		c.logger.Infof(c.logCtx, "websocket connection aborted")
	}
	c.dispose()
	c.tryReleaseReceiveBuffer()
}

// failは、クローズハンドシェイクの完了を待たずにコネクションをクローズ状態にします。
func (c *Conn) fail() {
	c.state.toClosed()
	c.dispose()
}

func (c *Conn) dispose() {
	c.disposeOnce.Do(func() {
		c.cancel()
		if err := c.stream.Close(); err != nil {
			c.logger.Debugf(c.logCtx, "failed to close stream: %v", err)
		}
	})
}

// watchCancelは、ctxがキャンセルされたときにコネクションを中断するよう登録します。
func (c *Conn) watchCancel(ctx context.Context) (stop func() bool, err error) {
	if err := ctx.Err(); err != nil {
		c.Abort()
		return nil, errors.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return context.AfterFunc(ctx, c.Abort), nil
}

func (c *Conn) lockSend(ctx context.Context) error {
	select {
	case c.sendSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
	case <-c.ctx.Done():
		return errors.Errorf("connection is %v: %w", c.State(), errors.ErrCanceled)
	}
}

func (c *Conn) tryLockSend() bool {
	select {
	case c.sendSem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (c *Conn) unlockSend() {
	<-c.sendSem
}

func (c *Conn) lockReceive(ctx context.Context) error {
	select {
	case c.receiveSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
	case <-c.ctx.Done():
		return errors.Errorf("connection is %v: %w", c.State(), errors.ErrCanceled)
	}
}

// unlockReceiveは、受信ロックを解放します。
//
// コネクションが終了している場合は受信バッファも解放します。
func (c *Conn) unlockReceive() {
	if c.state.Current().isTerminal() {
		c.releaseReceiveBuffer()
	}
	<-c.receiveSem
}

func (c *Conn) tryReleaseReceiveBuffer() {
	select {
	case c.receiveSem <- struct{}{}:
		c.unlockReceive()
	default:
		// 受信中の場合は、受信の終了時に解放されます。
	}
}

func (c *Conn) releaseReceiveBuffer() {
	if c.receiveBuffer == nil {
		return
	}
	if c.receiveBufferFromPool {
		c.releaseBuffer(c.receiveBuffer)
	}
	c.receiveBuffer = nil
	c.receiveBufferFromPool = false
	c.receiveBufferOffset = 0
	c.receiveBufferCount = 0
}

func (c *Conn) releaseBuffer(buf []byte) {
	if err := c.pool.Return(buf); err != nil {
		c.logger.Warnf(c.logCtx, "failed to return buffer to pool: %v", err)
	}
}

// ioErrorは、ストリームの読み書きで発生したエラーを分類し、コネクションを中断します。
func (c *Conn) ioError(ctx context.Context, err error) error {
	defer c.Abort()
	if errors.Is(err, errors.ErrCanceled) || errors.Is(err, errors.ErrConnectionClosedPrematurely) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Errorf("%w: %w: %v", errors.ErrCanceled, ctxErr, err)
	}
	if c.state.Current() == StateAborted {
		return errors.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return errors.Errorf("%w: %w", errors.ErrConnectionClosedPrematurely, err)
}
