package ws

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/aptpod/wsproto-go/errors"
)

// Receiveは、メッセージの一部または全部をdestへ受信します。
//
// Ping、Pongフレームは内部で処理され、呼び出し元へは返しません。
// クローズフレームを受信した場合、MessageTypeが MessageClose の結果を返します。
// 受信中に別のReceiveを呼び出すと、コネクションは中断され errors.ErrInvalidOperation を返します。
func (c *Conn) Receive(ctx context.Context, dest []byte) (ReceiveResult, error) {
	if err := c.state.check(StateOpen, StateCloseSent); err != nil {
		return ReceiveResult{}, err
	}
	if !c.receiving.CompareAndSwap(false, true) {
		c.Abort()
		return ReceiveResult{}, errors.Errorf("another receive is in progress: %w", errors.ErrInvalidOperation)
	}
	defer c.receiving.Store(false)

	stop, err := c.watchCancel(ctx)
	if err != nil {
		return ReceiveResult{}, err
	}
	defer stop()

	if err := c.lockReceive(ctx); err != nil {
		return ReceiveResult{}, err
	}
	defer c.unlockReceive()
	return c.receiveLocked(ctx, dest)
}

func (c *Conn) receiveLocked(ctx context.Context, dest []byte) (ReceiveResult, error) {
	if c.receiveBuffer == nil {
		return ReceiveResult{}, &InvalidStateError{
			Current:  c.state.Current(),
			Accepted: []State{StateOpen, StateCloseSent},
		}
	}
	res, err := c.receiveFrames(ctx, dest)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, errors.ErrProtocol) || errors.Is(err, errors.ErrInvalidPayload) {
		return ReceiveResult{}, c.closeWithReceiveError(ctx, CloseStatusProtocolError, err)
	}
	return ReceiveResult{}, c.ioError(ctx, err)
}

func (c *Conn) receiveFrames(ctx context.Context, dest []byte) (ReceiveResult, error) {
	for {
		h := c.lastReceiveHeader
		if h.payloadLength == 0 {
			next, err := c.readFrameHeader()
			if err != nil {
				return ReceiveResult{}, err
			}
			switch next.opcode {
			case opPing, opPong:
				if err := c.handleReceivedPingPong(ctx, next); err != nil {
					return ReceiveResult{}, err
				}
				continue
			case opClose:
				return c.handleReceivedClose(next)
			case opContinuation:
				next.opcode = c.lastReceiveHeader.opcode
			}
			h = next
			c.lastReceiveHeader = h
			c.receivedMaskOffset = 0
		}

		typ := h.opcode.messageType()
		n := int(min(int64(len(dest)), h.payloadLength))
		if n == 0 {
			eom := h.fin && h.payloadLength == 0
			if eom && typ == MessageText && !c.utf8.validate(nil, true) {
				return ReceiveResult{}, errInvalidUTF8
			}
			return ReceiveResult{MessageType: typ, EndOfMessage: eom}, nil
		}

		for copied := 0; copied < n; {
			if c.receiveBufferCount == 0 {
				if err := c.ensureBufferContains(1); err != nil {
					return ReceiveResult{}, err
				}
			}
			k := min(n-copied, c.receiveBufferCount)
			copy(dest[copied:copied+k], c.receiveBuffer[c.receiveBufferOffset:])
			c.consumeFromBuffer(k)
			copied += k
		}
		if h.masked {
			c.receivedMaskOffset = ApplyMask(dest[:n], h.mask, c.receivedMaskOffset)
		}
		c.lastReceiveHeader.payloadLength -= int64(n)

		eom := h.fin && c.lastReceiveHeader.payloadLength == 0
		if typ == MessageText && !c.utf8.validate(dest[:n], eom) {
			return ReceiveResult{}, errInvalidUTF8
		}
		return ReceiveResult{Count: n, MessageType: typ, EndOfMessage: eom}, nil
	}
}

func (c *Conn) readFrameHeader() (frameHeader, error) {
	if err := c.ensureBufferContains(2); err != nil {
		return frameHeader{}, err
	}
	length := frameHeaderLength(c.receiveBuffer[c.receiveBufferOffset+1])
	if err := c.ensureBufferContains(length); err != nil {
		return frameHeader{}, err
	}
	h, n, err := parseFrameHeader(c.receiveBuffer[c.receiveBufferOffset:c.receiveBufferOffset+length], c.lastReceiveHeader, c.role)
	if err != nil {
		return frameHeader{}, err
	}
	c.consumeFromBuffer(n)
	return h, nil
}

func (c *Conn) handleReceivedPingPong(ctx context.Context, h frameHeader) error {
	length := int(h.payloadLength)
	if length > 0 {
		if err := c.ensureBufferContains(length); err != nil {
			return err
		}
	}
	payload := c.receiveBuffer[c.receiveBufferOffset : c.receiveBufferOffset+length]
	if h.masked {
		ApplyMask(payload, h.mask, 0)
	}
	if h.opcode == opPing && !c.state.CloseSent() {
		if err := c.sendFrame(ctx, opPong, true, payload); err != nil {
			return err
		}
	}
	c.consumeFromBuffer(length)
	return nil
}

func (c *Conn) handleReceivedClose(h frameHeader) (ReceiveResult, error) {
	if h.payloadLength == 1 {
		return ReceiveResult{}, errors.Errorf("close payload is 1 byte: %w", errInvalidCloseFrame)
	}

	status := CloseStatusNormalClosure
	var description string
	if h.payloadLength >= 2 {
		length := int(h.payloadLength)
		if err := c.ensureBufferContains(length); err != nil {
			return ReceiveResult{}, err
		}
		payload := c.receiveBuffer[c.receiveBufferOffset : c.receiveBufferOffset+length]
		if h.masked {
			ApplyMask(payload, h.mask, 0)
		}
		status = CloseStatus(binary.BigEndian.Uint16(payload))
		if !isValidReceivedCloseStatus(status) {
			return ReceiveResult{}, errors.Errorf("received close status %d: %w", uint16(status), errInvalidCloseFrame)
		}
		var v utf8Validator
		if !v.validate(payload[2:], true) {
			return ReceiveResult{}, errors.Errorf("close description: %w", errInvalidUTF8)
		}
		description = string(payload[2:])
		c.consumeFromBuffer(length)
	}

	if c.state.markCloseReceived(status, true, description) {
		c.dispose()
	}
	c.logger.Infof(c.logCtx, "received close frame: status=%v description=%q", status, description)
	return ReceiveResult{
		MessageType:            MessageClose,
		EndOfMessage:           true,
		CloseStatus:            status,
		HasCloseStatus:         true,
		CloseStatusDescription: description,
	}, nil
}

// closeWithReceiveErrorは、受信したデータの異常によりクローズフレームを送信し、コネクションをクローズ状態にします。
func (c *Conn) closeWithReceiveError(ctx context.Context, status CloseStatus, cause error) error {
	if !c.state.CloseSent() {
		if err := c.sendCloseFrame(ctx, status, ""); err != nil {
			c.logger.Warnf(c.logCtx, "failed to send close frame: %v", err)
		}
	}
	c.receiveBufferCount = 0
	c.logger.Errorf(c.logCtx, "closing websocket connection: status=%v: %v", status, cause)
	c.fail()
	return cause
}

// ensureBufferContainsは、受信バッファに未読のデータがminimumバイト以上あるようにストリームから読み込みます。
func (c *Conn) ensureBufferContains(minimum int) error {
	if c.receiveBufferCount >= minimum {
		return nil
	}
	if minimum > len(c.receiveBuffer) {
		c.growReceiveBuffer(minimum)
	}
	if c.receiveBufferCount > 0 && c.receiveBufferOffset > 0 {
		copy(c.receiveBuffer, c.receiveBuffer[c.receiveBufferOffset:c.receiveBufferOffset+c.receiveBufferCount])
	}
	c.receiveBufferOffset = 0

	for c.receiveBufferCount < minimum {
		n, err := c.stream.Read(c.receiveBuffer[c.receiveBufferCount:])
		c.receiveBufferCount += n
		if err != nil {
			if c.receiveBufferCount >= minimum {
				return nil
			}
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// growReceiveBufferは、未読のデータを保持したまま受信バッファをminimumバイト以上に拡張します。
func (c *Conn) growReceiveBuffer(minimum int) {
	buf := c.pool.Rent(minimum)
	copy(buf, c.receiveBuffer[c.receiveBufferOffset:c.receiveBufferOffset+c.receiveBufferCount])
	if c.receiveBufferFromPool {
		c.releaseBuffer(c.receiveBuffer)
	}
	c.receiveBuffer = buf
	c.receiveBufferFromPool = true
	c.receiveBufferOffset = 0
}

func (c *Conn) consumeFromBuffer(n int) {
	c.receiveBufferOffset += n
	c.receiveBufferCount -= n
}
