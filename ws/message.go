package ws

import "fmt"

// MessageTypeは、WebSocketのメッセージタイプを表します。
type MessageType int

const (
	MessageText   MessageType = iota + 1 // テキストメッセージ
	MessageBinary                        // バイナリメッセージ
	MessageClose                         // クローズメッセージ
)

func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	case MessageClose:
		return "close"
	}
	return fmt.Sprintf("MessageType(%d)", int(t))
}

// ReceiveResultは、Receiveの結果です。
type ReceiveResult struct {
	// Countは、受信バッファへコピーしたバイト数です。
	Count int
	// MessageTypeは、受信したメッセージのタイプです。
	MessageType MessageType
	// EndOfMessageは、このReceiveでメッセージの最後まで受信したかどうかです。
	EndOfMessage bool

	// CloseStatusは、MessageTypeが MessageClose の場合にピアから受信したクローズステータスです。
	CloseStatus CloseStatus
	// HasCloseStatusは、CloseStatusが設定されているかどうかです。
	HasCloseStatus bool
	// CloseStatusDescriptionは、ピアから受信したクローズ理由です。
	CloseStatusDescription string
}

type opcode byte

const (
	opContinuation opcode = 0x0
	opText         opcode = 0x1
	opBinary       opcode = 0x2
	opClose        opcode = 0x8
	opPing         opcode = 0x9
	opPong         opcode = 0xA
)

func (o opcode) isControl() bool {
	return o&0x8 != 0
}

func (o opcode) String() string {
	switch o {
	case opContinuation:
		return "continuation"
	case opText:
		return "text"
	case opBinary:
		return "binary"
	case opClose:
		return "close"
	case opPing:
		return "ping"
	case opPong:
		return "pong"
	}
	return fmt.Sprintf("opcode(0x%x)", byte(o))
}

func (o opcode) messageType() MessageType {
	if o == opText {
		return MessageText
	}
	return MessageBinary
}
