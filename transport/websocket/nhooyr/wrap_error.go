package nhooyr

import (
	"context"
	"fmt"
	"net"
	"os"

	nwebsocket "nhooyr.io/websocket"

	"github.com/aptpod/wsproto-go/errors"
)

func handleError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%+v: %w", err, errors.ErrConnectionClosed)
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%+v: %w", err, errors.ErrConnectionClosed)
	}
	var sysCallErr *os.SyscallError
	if errors.As(err, &sysCallErr) {
		return fmt.Errorf("%+v: %w", err, errors.ErrConnectionClosed)
	}

	if status := nwebsocket.CloseStatus(err); status != -1 {
		return fmt.Errorf("peer closed with status %d: %w", status, errors.ErrConnectionClosed)
	}
	return err
}
