package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrWebSocketはwsprotoライブラリで定義されている基底エラーです。
	ErrWebSocket = errors.New("websocket")

	// ErrProtocolは、受信したフレームがRFC 6455のフレーミング規則に違反している場合のエラーです。
	//
	// 予約ビット、未定義のオペコード、制御フレームの長さ超過、継続フレームの順序不整合などが該当します。
	ErrProtocol = fmt.Errorf("protocol error: %w", ErrWebSocket)
	// ErrInvalidPayloadは、テキストメッセージのペイロードが不正なUTF-8であった場合のエラーです。
	ErrInvalidPayload = fmt.Errorf("invalid payload data: %w", ErrWebSocket)
	// ErrInvalidStateは、現在のコネクション状態では受け付けられない操作を行った場合のエラーです。
	ErrInvalidState = fmt.Errorf("invalid state: %w", ErrWebSocket)
	// ErrInvalidOperationは、送信または受信を同時に複数実行した場合のエラーです。
	ErrInvalidOperation = fmt.Errorf("invalid operation: %w", ErrInvalidState)
	// ErrConnectionClosedPrematurelyは、クローズハンドシェイクを経ずにストリームの読み書きに失敗した場合のエラーです。
	ErrConnectionClosedPrematurely = fmt.Errorf("connection closed prematurely: %w", ErrWebSocket)
	// ErrCanceledは、キャンセルまたはAbortによって操作が中断された場合のエラーです。
	ErrCanceled = fmt.Errorf("operation canceled: %w", ErrWebSocket)
	// ErrConnectionClosedは、クローズ済みのコネクションへ読み書きした場合のエラーです。
	ErrConnectionClosed = fmt.Errorf("closed websocket connection: %w", ErrWebSocket)

	// ErrInvalidArgumentは、引数や設定値が不正な場合のエラーです。
	ErrInvalidArgument = fmt.Errorf("invalid argument: %w", ErrWebSocket)
	// ErrInvalidCloseStatusは、送信できないクローズステータスまたはクローズ理由を指定した場合のエラーです。
	ErrInvalidCloseStatus = fmt.Errorf("invalid close status: %w", ErrInvalidArgument)
	// ErrInvalidSubprotocolは、サブプロトコル名が不正な場合のエラーです。
	ErrInvalidSubprotocol = fmt.Errorf("invalid subprotocol: %w", ErrInvalidArgument)

	// ErrBufferNotFromPoolは、バッファプールが管理していない長さのバッファを返却した場合のエラーです。
	ErrBufferNotFromPool = fmt.Errorf("buffer is not from pool: %w", ErrInvalidArgument)

	// ErrHandshakeは、WebSocketのオープニングハンドシェイクに失敗した場合のエラーです。
	ErrHandshake = fmt.Errorf("handshake failed: %w", ErrWebSocket)
	// ErrNoDialFuncは、DialFuncが設定も登録もされていない状態でDialした場合のエラーです。
	ErrNoDialFunc = fmt.Errorf("no dial func registered: %w", ErrWebSocket)
)

func New(text string) error {
	return errors.New(text)
}

func Errorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
