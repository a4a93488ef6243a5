package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/aptpod/wsproto-go/log"
)

func Test_logrusLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	testee := NewLogrus(l)
	ctx := WithTrackConnID(context.Background())
	require.NotPanics(t, func() { testee.Infof(ctx, "message %d", 1) })
	require.NotPanics(t, func() { testee.Warnf(ctx, "message %d", 2) })
	require.NotPanics(t, func() { testee.Errorf(ctx, "message %d", 3) })
	require.NotPanics(t, func() { testee.Debugf(context.Background(), "message %d", 4) })

	out := buf.String()
	assert.Contains(t, out, `level=info msg="message 1" track_conn_id=`+TrackConnID(ctx))
	assert.Contains(t, out, `level=warning msg="message 2"`)
	assert.Contains(t, out, `level=error msg="message 3"`)
	assert.Contains(t, out, `level=debug msg="message 4"`+"\n")
}
