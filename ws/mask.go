package ws

import (
	"crypto/rand"

	gobwas "github.com/gobwas/ws"
)

// ApplyMaskは、bをマスクキーkeyでXORし、続きのデータに使用するオフセットを返します。
//
// offsetはマスクキー内の開始位置で、4の剰余として扱われます。
// 同じキーとオフセットで2回適用すると元のデータに戻ります。
func ApplyMask(b []byte, key [4]byte, offset int) int {
	offset &= 3
	gobwas.Cipher(b, key, offset)
	return (offset + len(b)) & 3
}

func newMaskKey() ([4]byte, error) {
	var key [4]byte
	_, err := rand.Read(key[:])
	return key, err
}
