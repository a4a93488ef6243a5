/*
Package websocket は、 WebSocket を使用したメッセージ単位のトランスポートを提供するパッケージです。

WebSocketの実装は DialFunc として差し替えることができます。
native パッケージは ws パッケージのプロトコルエンジンを使用し、
gorilla パッケージと nhooyr パッケージはそれぞれのライブラリを使用します。

	websocket.RegisterDialFunc(native.NewDialFunc(*native.DefaultConfig()))

	tr, err := websocket.NewDefaultDialer().Dial(ctx, "localhost:8080")
*/
package websocket

import (
	"bytes"
	"sync"
)

/*
Name は、本トランスポートの名称です。
*/
const Name = "websocket"

const (
	bufferSize = 4096
)

var bufferPool = sync.Pool{New: func() interface{} {
	return bytes.NewBuffer(make([]byte, 0, bufferSize))
}}
