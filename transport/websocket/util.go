package websocket

import (
	"io"
	"net"
	"syscall"

	gwebsocket "github.com/gorilla/websocket"
	"nhooyr.io/websocket"

	"github.com/aptpod/wsproto-go/errors"
)

// IsClosedは、errがコネクションの切断によるエラーかどうかを判定します。
//
// ws パッケージのエンジン、gorilla/websocket、nhooyr.io/websocket のいずれのエラーも判定できます。
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errors.ErrConnectionClosed) ||
		errors.Is(err, errors.ErrConnectionClosedPrematurely) ||
		errors.Is(err, errors.ErrCanceled) {
		return true
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	if websocket.CloseStatus(err) != -1 {
		return true
	}
	if gwebsocket.IsCloseError(
		err,
		gwebsocket.CloseNormalClosure,
		gwebsocket.CloseGoingAway,
		gwebsocket.CloseProtocolError,
		gwebsocket.CloseUnsupportedData,
		gwebsocket.CloseNoStatusReceived,
		gwebsocket.CloseAbnormalClosure,
		gwebsocket.CloseInvalidFramePayloadData,
		gwebsocket.ClosePolicyViolation,
		gwebsocket.CloseMessageTooBig,
		gwebsocket.CloseMandatoryExtension,
		gwebsocket.CloseInternalServerErr,
		gwebsocket.CloseServiceRestart,
		gwebsocket.CloseTryAgainLater,
		gwebsocket.CloseTLSHandshake,
	) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, gwebsocket.ErrCloseSent) {
		return true
	}
	return false
}
