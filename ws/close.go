package ws

import (
	"context"
	"encoding/binary"
)

// Closeは、クローズハンドシェイクを行いコネクションを終了します。
//
// クローズフレームを未送信であれば送信し、ピアからクローズフレームを受信するまで受信を続けます。
// 受信したデータメッセージは破棄されます。
func (c *Conn) Close(ctx context.Context, status CloseStatus, description string) error {
	if err := ValidateCloseStatus(status, description); err != nil {
		return err
	}
	if err := c.state.check(StateOpen, StateCloseReceived, StateCloseSent); err != nil {
		return err
	}
	stop, err := c.watchCancel(ctx)
	if err != nil {
		return err
	}
	defer stop()

	if !c.state.CloseSent() {
		if err := c.sendCloseFrame(ctx, status, description); err != nil && !c.state.CloseSent() {
			return err
		}
	}

	buf := c.pool.Rent(maxControlFrameLength)
	defer c.releaseBuffer(buf)
	for !c.state.CloseReceived() {
		if err := c.lockReceive(ctx); err != nil {
			if c.state.CloseReceived() {
				break
			}
			return err
		}
		if c.state.CloseReceived() {
			c.unlockReceive()
			break
		}
		_, err := c.receiveLocked(ctx, buf)
		c.unlockReceive()
		if err != nil {
			return err
		}
	}

	c.state.toClosed()
	c.dispose()
	c.tryReleaseReceiveBuffer()
	c.logger.Infof(c.logCtx, "websocket connection closed: status=%v", status)
	return nil
}

// CloseOutputは、クローズフレームを送信します。ピアからのクローズフレームは待ちません。
//
// すでにクローズフレームを受信している場合、コネクションはクローズ状態になります。
func (c *Conn) CloseOutput(ctx context.Context, status CloseStatus, description string) error {
	if err := ValidateCloseStatus(status, description); err != nil {
		return err
	}
	if err := c.state.check(StateOpen, StateCloseReceived); err != nil {
		return err
	}
	return c.sendCloseFrame(ctx, status, description)
}

func (c *Conn) sendCloseFrame(ctx context.Context, status CloseStatus, description string) error {
	length := 2 + len(description)
	buf := c.pool.Rent(length)
	defer c.releaseBuffer(buf)
	binary.BigEndian.PutUint16(buf, uint16(status))
	copy(buf[2:], description)

	if err := c.sendFrame(ctx, opClose, true, buf[:length]); err != nil {
		return err
	}
	c.logger.Infof(c.logCtx, "sent close frame: status=%v description=%q", status, description)
	return nil
}
