/*
Package wsproto は、RFC 6455 WebSocketのフレームプロトコルをクライアント側で扱うためのモジュールです。

モジュールは次のパッケージで構成されます。

  - ws: 確立済みのバイトストリーム上でフレームの送受信、Ping/Pong、クローズハンドシェイクを行うプロトコルエンジン
  - bufpool: エンジンが送受信に使用するバッファプール
  - transport/websocket: メッセージ単位で読み書きするトランスポートと、差し替え可能なDialFunc
  - transport/websocket/native: ws パッケージを使用したHTTP/1.1 Upgradeハンドシェイクの実装

# Echo

このサンプルではエコーサーバーへ接続し、テキストメッセージを送受信します。

	package main

	import (
		"context"
		"log"

		"github.com/aptpod/wsproto-go/transport/websocket"
		"github.com/aptpod/wsproto-go/transport/websocket/native"
	)

	func main() {
		ctx := context.Background()
		tr, err := websocket.DialWithConfig(ctx, "localhost:8080", websocket.DialerConfig{
			Path:        "/echo",
			MessageType: websocket.MessageText,
			DialFunc:    native.NewDialFunc(*native.DefaultConfig()),
		})
		if err != nil {
			log.Fatalf("failed to open connection: %v", err)
		}
		defer tr.Close()

		if err := tr.Write([]byte("hello")); err != nil {
			log.Fatal(err)
		}
		msg, err := tr.Read()
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("received: %s", msg)
	}

# Engine

確立済みのストリームに対して直接エンジンを使用することもできます。

	conn, err := ws.New(stream, ws.WithRole(ws.RoleClient), ws.WithKeepAliveInterval(10*time.Second))
	if err != nil {
		return err
	}
	if err := conn.Send(ctx, []byte("hello"), ws.MessageText, true); err != nil {
		return err
	}
	buf := make([]byte, 4096)
	res, err := conn.Receive(ctx, buf)
	if err != nil {
		return err
	}
	if res.MessageType == ws.MessageClose {
		return conn.Close(ctx, ws.CloseStatusNormalClosure, "")
	}
*/
package wsproto
