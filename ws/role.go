package ws

// Roleは、コネクションにおけるエンジンの役割です。
//
// クライアントは送信フレームを必ずマスクし、マスクされたフレームを受信するとプロトコルエラーとします。
// サーバーは送信フレームをマスクせず、マスクされていないフレームを受信するとプロトコルエラーとします。
type Role uint8

const (
	RoleClient Role = iota // クライアント
	RoleServer             // サーバー
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	}
	return "unknown"
}

func (r Role) masksOutgoing() bool {
	return r == RoleClient
}

func (r Role) expectsMaskedIncoming() bool {
	return r == RoleServer
}
