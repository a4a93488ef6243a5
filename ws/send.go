package ws

import (
	"context"

	"github.com/aptpod/wsproto-go/errors"
)

// Sendは、メッセージまたはメッセージの断片を送信します。
//
// endOfMessageがfalseの場合、次のSendは同じメッセージの継続フレームとして送信されます。
// 送信中に別のSendを呼び出すと、コネクションは中断され errors.ErrInvalidOperation を返します。
func (c *Conn) Send(ctx context.Context, payload []byte, typ MessageType, endOfMessage bool) error {
	op, err := typ.dataOpcode()
	if err != nil {
		return err
	}
	if err := c.state.check(StateOpen, StateCloseReceived); err != nil {
		return err
	}
	if !c.sending.CompareAndSwap(false, true) {
		c.Abort()
		return errors.Errorf("another send is in progress: %w", errors.ErrInvalidOperation)
	}
	defer c.sending.Store(false)

	if c.lastSendWasFragment {
		op = opContinuation
	}
	c.lastSendWasFragment = !endOfMessage
	return c.sendFrame(ctx, op, endOfMessage, payload)
}

// Pingは、空のPingフレームを送信します。
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.state.check(StateOpen, StateCloseReceived); err != nil {
		return err
	}
	return c.sendFrame(ctx, opPing, true, nil)
}

func (t MessageType) dataOpcode() (opcode, error) {
	switch t {
	case MessageText:
		return opText, nil
	case MessageBinary:
		return opBinary, nil
	}
	return 0, errors.Errorf("cannot send message type %v: %w", t, errors.ErrInvalidArgument)
}

func (c *Conn) sendFrame(ctx context.Context, op opcode, fin bool, payload []byte) error {
	stop, err := c.watchCancel(ctx)
	if err != nil {
		return err
	}
	defer stop()

	if err := c.lockSend(ctx); err != nil {
		return err
	}
	defer c.unlockSend()

	// クローズフレームの送信後は、どのフレームも送信しません。
	if c.state.CloseSent() {
		if op == opPong {
			return nil
		}
		return &InvalidStateError{
			Current:  c.state.Current(),
			Accepted: []State{StateOpen, StateCloseReceived},
		}
	}
	if err := c.writeFrameLocked(ctx, op, fin, payload); err != nil {
		return err
	}
	if op == opClose && c.state.markCloseSent() {
		c.dispose()
	}
	return nil
}

// writeFrameLockedは、1つのフレームを組み立ててストリームへ書き込みます。送信ロックを取得してから呼び出します。
func (c *Conn) writeFrameLocked(ctx context.Context, op opcode, fin bool, payload []byte) error {
	buf := c.pool.Rent(len(payload) + maxMessageHeaderLength)
	defer c.releaseBuffer(buf)

	masked := c.role.masksOutgoing()
	n := writeFrameHeader(buf, op, fin, len(payload), masked)
	copy(buf[n:], payload)
	if masked {
		key, err := newMaskKey()
		if err != nil {
			return errors.Errorf("failed to generate mask key: %w", err)
		}
		copy(buf[n-4:n], key[:])
		ApplyMask(buf[n:n+len(payload)], key, 0)
	}

	if _, err := c.stream.Write(buf[:n+len(payload)]); err != nil {
		return c.ioError(ctx, err)
	}
	return nil
}
