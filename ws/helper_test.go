package ws_test

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aptpod/wsproto-go/bufpool"
	. "github.com/aptpod/wsproto-go/ws"
)

const testTimeout = 10 * time.Second

func tcpPair(t *testing.T) (cli net.Conn, srv net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	type accepted struct {
		conn net.Conn
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		conn, err := ln.Accept()
		ch <- accepted{conn: conn, err: err}
	}()

	cli, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	res := <-ch
	require.NoError(t, res.err)
	t.Cleanup(func() {
		cli.Close()
		res.conn.Close()
	})
	return cli, res.conn
}

func newConn(t *testing.T, stream Stream, opts ...Option) *Conn {
	t.Helper()
	conn, err := New(stream, append([]Option{WithKeepAliveInterval(0)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(conn.Abort)
	return conn
}

// newPairは、TCPで接続されたクライアントとサーバーのConnを生成します。
func newPair(t *testing.T) (client *Conn, server *Conn) {
	t.Helper()
	cli, srv := tcpPair(t)
	return newConn(t, cli), newConn(t, srv, WithRole(RoleServer))
}

// newRawPairは、クライアントのConnと、フレームを直接読み書きするピアを生成します。
func newRawPair(t *testing.T, opts ...Option) (client *Conn, peer net.Conn) {
	t.Helper()
	cli, srv := tcpPair(t)
	require.NoError(t, srv.SetDeadline(time.Now().Add(testTimeout)))
	return newConn(t, cli, opts...), srv
}

func writeRawFrame(t *testing.T, w io.Writer, b0 byte, payload []byte, masked bool) {
	t.Helper()
	header := []byte{b0, 0}
	switch l := len(payload); {
	case l <= 125:
		header[1] = byte(l)
	case l <= 0xFFFF:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(l))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, uint64(l))
	}
	body := append([]byte(nil), payload...)
	if masked {
		key := [4]byte{0x37, 0xFA, 0x21, 0x3D}
		header[1] |= 0x80
		header = append(header, key[:]...)
		for i := range body {
			body[i] ^= key[i%4]
		}
	}
	_, err := w.Write(append(header, body...))
	require.NoError(t, err)
}

type rawFrame struct {
	b0      byte
	masked  bool
	payload []byte
}

func readRawFrame(t *testing.T, r io.Reader) rawFrame {
	t.Helper()
	var header [2]byte
	_, err := io.ReadFull(r, header[:])
	require.NoError(t, err)

	length := uint64(header[1] & 0x7F)
	switch length {
	case 126:
		var ext [2]byte
		_, err := io.ReadFull(r, ext[:])
		require.NoError(t, err)
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		_, err := io.ReadFull(r, ext[:])
		require.NoError(t, err)
		length = binary.BigEndian.Uint64(ext[:])
	}

	f := rawFrame{b0: header[0], masked: header[1]&0x80 != 0}
	var key [4]byte
	if f.masked {
		_, err := io.ReadFull(r, key[:])
		require.NoError(t, err)
	}
	f.payload = make([]byte, length)
	_, err = io.ReadFull(r, f.payload)
	require.NoError(t, err)
	if f.masked {
		for i := range f.payload {
			f.payload[i] ^= key[i%4]
		}
	}
	return f
}

func closePayload(status CloseStatus, description string) []byte {
	return append(binary.BigEndian.AppendUint16(nil, uint16(status)), description...)
}

func requireRawClose(t *testing.T, r io.Reader, want CloseStatus) {
	t.Helper()
	f := readRawFrame(t, r)
	require.Equal(t, byte(0x88), f.b0)
	require.GreaterOrEqual(t, len(f.payload), 2)
	require.Equal(t, want, CloseStatus(binary.BigEndian.Uint16(f.payload)))
}

// receiveMessageは、メッセージの最後まで受信します。
func receiveMessage(t *testing.T, conn *Conn, bufSize int) (MessageType, []byte, error) {
	t.Helper()
	ctx, cancel := testContext()
	defer cancel()
	buf := make([]byte, bufSize)
	msg := []byte{}
	for {
		res, err := conn.Receive(ctx, buf)
		if err != nil {
			return 0, nil, err
		}
		msg = append(msg, buf[:res.Count]...)
		if res.EndOfMessage {
			return res.MessageType, msg, nil
		}
	}
}

func testContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), testTimeout)
}

func bufferPoolForTest() *bufpool.Pool {
	return bufpool.New(4096, 4)
}
