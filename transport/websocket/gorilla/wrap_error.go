package gorilla

import (
	"fmt"
	"net"
	"syscall"

	gwebsocket "github.com/gorilla/websocket"

	"github.com/aptpod/wsproto-go/errors"
)

func handleError(err error) error {
	if err == nil {
		return nil
	}
	if isErrTransportClosed(err) {
		return fmt.Errorf("%+v: %w", err, errors.ErrConnectionClosed)
	}
	var closeErr *gwebsocket.CloseError
	if errors.As(err, &closeErr) {
		return fmt.Errorf("peer closed with status %d %q: %w", closeErr.Code, closeErr.Text, errors.ErrConnectionClosed)
	}
	return err
}

func isErrTransportClosed(err error) bool {
	if errors.Is(err, gwebsocket.ErrCloseSent) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
