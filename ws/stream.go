package ws

import "io"

// Streamは、確立済みの双方向バイトストリームです。
//
// Closeは、ブロック中のReadとWriteを解除しなければなりません。
//
//go:generate mockgen -destination ./${GOPACKAGE}mock/${GOFILE} -package ${GOPACKAGE}mock -source ./${GOFILE}
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}
