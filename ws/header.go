package ws

import (
	"encoding/binary"

	"github.com/aptpod/wsproto-go/errors"
)

var (
	errReservedBits           = errors.Errorf("reserved bits are set: %w", errors.ErrProtocol)
	errUnexpectedMask         = errors.Errorf("unexpected masked frame: %w", errors.ErrProtocol)
	errMissingMask            = errors.Errorf("frame is not masked: %w", errors.ErrProtocol)
	errUnexpectedContinuation = errors.Errorf("continuation frame without preceding fragment: %w", errors.ErrProtocol)
	errExpectedContinuation   = errors.Errorf("expected continuation frame: %w", errors.ErrProtocol)
	errControlTooLarge        = errors.Errorf("control frame payload exceeds 125 bytes: %w", errors.ErrProtocol)
	errControlFragmented      = errors.Errorf("control frame is fragmented: %w", errors.ErrProtocol)
	errInvalidOpcode          = errors.Errorf("invalid opcode: %w", errors.ErrProtocol)
	errInvalidLength          = errors.Errorf("invalid payload length: %w", errors.ErrProtocol)
	errInvalidCloseFrame      = errors.Errorf("invalid close frame payload: %w", errors.ErrProtocol)
	errInvalidUTF8            = errors.Errorf("text message is not valid UTF-8: %w", errors.ErrInvalidPayload)
)

type frameHeader struct {
	opcode        opcode
	fin           bool
	payloadLength int64
	mask          [4]byte
	masked        bool
}

// writeFrameHeaderは、bufの先頭にフレームヘッダーを書き込み、書き込んだバイト数を返します。
//
// maskedの場合はマスクキー分の4バイトを確保しますが、キーの値は書き込みません。
// bufは maxMessageHeaderLength 以上の長さが必要です。
func writeFrameHeader(buf []byte, op opcode, fin bool, length int, masked bool) int {
	b0 := byte(op)
	if fin {
		b0 |= 0x80
	}
	buf[0] = b0

	var n int
	switch {
	case length <= 125:
		buf[1] = byte(length)
		n = 2
	case length <= 0xFFFF:
		buf[1] = 126
		binary.BigEndian.PutUint16(buf[2:], uint16(length))
		n = 4
	default:
		buf[1] = 127
		binary.BigEndian.PutUint64(buf[2:], uint64(length))
		n = 10
	}
	if masked {
		buf[1] |= 0x80
		n += 4
	}
	return n
}

// frameHeaderLengthは、2バイト目から決まるヘッダー全体の長さを返します。
func frameHeaderLength(b1 byte) int {
	n := 2
	switch b1 & 0x7F {
	case 126:
		n += 2
	case 127:
		n += 8
	}
	if b1&0x80 != 0 {
		n += 4
	}
	return n
}

// parseFrameHeaderは、bの先頭からフレームヘッダーを解析し、ヘッダーの長さとともに返します。
//
// bには frameHeaderLength が返す長さ以上のデータが必要です。
// lastは直前に受信したデータフレームのヘッダーで、継続フレームの順序検証に使用します。
func parseFrameHeader(b []byte, last frameHeader, role Role) (frameHeader, int, error) {
	var h frameHeader
	if b[0]&0x70 != 0 {
		return h, 0, errReservedBits
	}
	h.fin = b[0]&0x80 != 0
	h.opcode = opcode(b[0] & 0x0F)
	h.masked = b[1]&0x80 != 0

	switch {
	case h.masked && !role.expectsMaskedIncoming():
		return h, 0, errUnexpectedMask
	case !h.masked && role.expectsMaskedIncoming():
		return h, 0, errMissingMask
	}

	n := 2
	switch l := b[1] & 0x7F; l {
	case 126:
		h.payloadLength = int64(binary.BigEndian.Uint16(b[2:]))
		n += 2
	case 127:
		v := binary.BigEndian.Uint64(b[2:])
		if v>>63 != 0 {
			return h, 0, errInvalidLength
		}
		h.payloadLength = int64(v)
		n += 8
	default:
		h.payloadLength = int64(l)
	}
	if h.masked {
		copy(h.mask[:], b[n:n+4])
		n += 4
	}

	switch h.opcode {
	case opContinuation:
		if last.fin {
			return h, 0, errUnexpectedContinuation
		}
	case opText, opBinary:
		if !last.fin {
			return h, 0, errExpectedContinuation
		}
	case opClose, opPing, opPong:
		if h.payloadLength > maxControlPayloadLength {
			return h, 0, errControlTooLarge
		}
		if !h.fin {
			return h, 0, errControlFragmented
		}
	default:
		return h, 0, errInvalidOpcode
	}
	return h, n, nil
}
