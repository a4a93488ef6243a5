package log

import (
	"context"

	"github.com/google/uuid"
)

// Loggerは、wsproto-go内で使用するロガーインターフェースです。
type Logger interface {
	Infof(context.Context, string, ...interface{})
	Warnf(context.Context, string, ...interface{})
	Errorf(context.Context, string, ...interface{})
	Debugf(context.Context, string, ...interface{})
}

var (
	trackConnIDKey    = "trackConnIDKey"
	trackMessageIDKey = "trackMessageIDKey"
)

// WithTrackConnIDは、新たにコネクションIDを採番しコンテキストにセットします。
//
// コネクションIDはWebSocketコネクションが生成されたタイミングでセットします。
// ここで設定されたコネクションIDは常にログ出力します。
func WithTrackConnID(ctx context.Context) context.Context {
	return context.WithValue(ctx, &trackConnIDKey, genTrackID())
}

// TrackConnIDは、コンテキストにセットされたコネクションIDを取得します。
func TrackConnID(ctx context.Context) string {
	v, ok := ctx.Value(&trackConnIDKey).(string)
	if !ok {
		return ""
	}
	return v
}

// WithTrackMessageIDは、新たにメッセージIDを採番しコンテキストにセットします。
//
// メッセージIDはメッセージの受信を開始したタイミングでセットします。
// ここで設定されたメッセージIDは常にログ出力します。
func WithTrackMessageID(ctx context.Context) context.Context {
	return context.WithValue(ctx, &trackMessageIDKey, genTrackID())
}

// TrackMessageIDは、コンテキストにセットされたメッセージIDを取得します。
func TrackMessageID(ctx context.Context) string {
	v, ok := ctx.Value(&trackMessageIDKey).(string)
	if !ok {
		return ""
	}
	return v
}

// genTrackIDは、ランダムなUUIDの先頭8文字を追跡IDとして返却します。
func genTrackID() string {
	return uuid.NewString()[:8]
}
