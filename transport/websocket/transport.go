package websocket

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/aptpod/wsproto-go/internal/xio"
	"github.com/aptpod/wsproto-go/ws"
)

// Transportは、WebSocketトランスポートです。
//
// Readは1メッセージを読み込み、Writeは1メッセージを書き込みます。
type Transport struct {
	wsconn      Conn
	messageType MessageType

	rxBytesCounter atomic.Uint64
	txBytesCounter atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// Newは、WebSocketトランスポートを返却します。
func New(config Config) *Transport {
	ctx, cancel := context.WithCancel(context.Background())
	return &Transport{
		wsconn:      config.webSocketConnOrPanic(),
		messageType: config.messageTypeOrDefault(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Readは、１メッセージ分のデータを読み込みます。
func (t *Transport) Read() ([]byte, error) {
	_, rd, err := t.wsconn.Reader(t.ctx)
	if err != nil {
		return nil, fmt.Errorf("get reader: %w", err)
	}
	n, m, err := t.decode(rd)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	t.rxBytesCounter.Add(uint64(n))
	return m, nil
}

// Writeは、１メッセージ分のデータを書き込みます。
func (t *Transport) Write(bs []byte) error {
	wr, err := t.wsconn.Writer(t.ctx, t.messageType)
	if err != nil {
		return fmt.Errorf("get writer: %w", err)
	}

	cwr := xio.NewCaptureWriter(wr)
	if _, err := cwr.Write(bs); err != nil {
		wr.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	t.txBytesCounter.Add(uint64(cwr.WrittenBytes))
	return nil
}

// TxBytesCounterValueは、書き込んだ総バイト数を返却します。
func (t *Transport) TxBytesCounterValue() uint64 {
	return t.txBytesCounter.Load()
}

// RxBytesCounterValueは、読み込んだ総バイト数を返却します。
func (t *Transport) RxBytesCounterValue() uint64 {
	return t.rxBytesCounter.Load()
}

// Subprotocolは、ネゴシエートされたサブプロトコルを返却します。
func (t *Transport) Subprotocol() string {
	return t.wsconn.Subprotocol()
}

// Nameはトランスポート名を返却します。
func (t *Transport) Name() string {
	return Name
}

// Closeはトランスポートを閉じます。
func (t *Transport) Close() error {
	return t.CloseWithStatus(ws.CloseStatusNormalClosure, "")
}

// CloseWithStatusは、指定したステータスでトランスポートを閉じます。
func (t *Transport) CloseWithStatus(status ws.CloseStatus, reason string) error {
	defer t.cancel()
	if err := t.wsconn.CloseWithStatus(status, reason); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

func (t *Transport) decode(rd io.Reader) (int, []byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	ird := xio.NewCaptureReader(rd)
	if _, err := io.Copy(buf, ird); err != nil {
		return 0, nil, err
	}
	m := make([]byte, buf.Len())
	copy(m, buf.Bytes())
	return ird.ReadBytes, m, nil
}
