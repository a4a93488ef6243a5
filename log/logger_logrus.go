package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	l logrus.FieldLogger
}

// NewLogrusは、logrusを使用するロガーを返却します。
//
// コンテキストにセットされたコネクションIDとメッセージIDは、それぞれ `track_conn_id` と
// `track_message_id` フィールドとして出力します。
func NewLogrus(l logrus.FieldLogger) Logger {
	return &logrusLogger{l: l}
}

func (l *logrusLogger) Infof(ctx context.Context, format string, args ...any) {
	l.entry(ctx).Infof(format, args...)
}

func (l *logrusLogger) Warnf(ctx context.Context, format string, args ...any) {
	l.entry(ctx).Warnf(format, args...)
}

func (l *logrusLogger) Errorf(ctx context.Context, format string, args ...any) {
	l.entry(ctx).Errorf(format, args...)
}

func (l *logrusLogger) Debugf(ctx context.Context, format string, args ...any) {
	l.entry(ctx).Debugf(format, args...)
}

func (l *logrusLogger) entry(ctx context.Context) logrus.FieldLogger {
	fields := logrus.Fields{}
	if cID := TrackConnID(ctx); cID != "" {
		fields["track_conn_id"] = cID
	}
	if mID := TrackMessageID(ctx); mID != "" {
		fields["track_message_id"] = mID
	}
	if len(fields) == 0 {
		return l.l
	}
	return l.l.WithFields(fields)
}
