package ch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/aptpod/wsproto-go/internal/ch"
)

func TestWriteOrDone(t *testing.T) {
	c := make(chan int, 1)
	assert.True(t, WriteOrDone(context.Background(), 1, c))
	assert.Equal(t, 1, <-c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, WriteOrDone(ctx, 2, make(chan int)))
}

func TestReadOrDoneOne(t *testing.T) {
	c := make(chan string, 1)
	c <- "a"
	got, ok := ReadOrDoneOne(context.Background(), c)
	assert.True(t, ok)
	assert.Equal(t, "a", got)

	close(c)
	got, ok = ReadOrDoneOne(context.Background(), c)
	assert.False(t, ok)
	assert.Empty(t, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = ReadOrDoneOne(ctx, make(chan string))
	assert.False(t, ok)
}
