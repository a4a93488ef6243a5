package ws

var IsValidReceivedCloseStatus = isValidReceivedCloseStatus

func (c *Conn) IsSending() bool {
	return c.sending.Load()
}

func (c *Conn) IsReceiving() bool {
	return c.receiving.Load()
}

func (c *Conn) ReceiveBufferReleased() bool {
	c.receiveSem <- struct{}{}
	defer func() { <-c.receiveSem }()
	return c.receiveBuffer == nil
}
