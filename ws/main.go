/*
Package ws は、接続済みのバイトストリーム上でRFC 6455のWebSocketフレームプロトコルを処理するエンジンを提供するパッケージです。

エンジンはメッセージの送信時にフレームへの分割とマスキングを行い、受信時にはフレームの解析、
断片化されたメッセージの再構成、テキストメッセージのUTF-8検証、Ping/Pong/Close制御フレームへの応答を行います。
TCP接続やTLS、HTTP Upgradeハンドシェイクは扱いません。それらは呼び出し側で確立したストリームを New に渡します。

	conn, err := ws.New(stream, ws.WithSubprotocol("chat"))
	if err != nil {
		return err
	}
	if err := conn.Send(ctx, []byte("hello"), ws.MessageText, true); err != nil {
		return err
	}
	buf := make([]byte, 1024)
	res, err := conn.Receive(ctx, buf)
	if err != nil {
		return err
	}
	if res.MessageType == ws.MessageClose {
		return conn.Close(ctx, ws.CloseStatusNormalClosure, "")
	}

送信と受信はそれぞれ同時に1つまで実行できます。送信と受信を並行して実行することは可能です。
*/
package ws

const (
	// ヘッダー(2) + 拡張ペイロード長(8) + マスクキー(4)
	maxMessageHeaderLength = 14

	maxControlPayloadLength = 125

	// クローズコード(2)を除いた長さです。
	maxCloseDescriptionLength = maxControlPayloadLength - 2

	maxControlFrameLength = maxMessageHeaderLength + maxControlPayloadLength
)
