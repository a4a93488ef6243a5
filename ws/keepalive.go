package ws

import "time"

func (c *Conn) keepAliveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sendKeepAlive()
		}
	}
}

// sendKeepAliveは、送信中でなければ空のPingフレームを送信します。
func (c *Conn) sendKeepAlive() {
	if err := c.state.check(StateOpen, StateCloseReceived); err != nil {
		return
	}
	if !c.tryLockSend() {
		c.logger.Debugf(c.logCtx, "skip keep-alive ping: send in progress")
		return
	}
	defer c.unlockSend()
	if c.state.CloseSent() {
		return
	}
	if err := c.writeFrameLocked(c.ctx, opPing, true, nil); err != nil {
		c.logger.Warnf(c.logCtx, "failed to send keep-alive ping: %v", err)
	}
}
