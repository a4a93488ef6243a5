// Package chは、コンテキストを考慮したチャンネル操作を提供します。
package ch

import "context"

// WriteOrDoneは、vをcへ送信します。ctxが先に終了した場合は送信せずにfalseを返します。
func WriteOrDone[T any](ctx context.Context, v T, c chan<- T) bool {
	select {
	case c <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// ReadOrDoneOneは、cから1つ受信します。
//
// ctxが終了した場合、またはcがクローズされた場合は2番目の戻り値がfalseになります。
func ReadOrDoneOne[T any](ctx context.Context, c <-chan T) (T, bool) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false
	case v, ok := <-c:
		return v, ok
	}
}
