package websocket

import (
	"golang.org/x/oauth2"

	"github.com/aptpod/wsproto-go/errors"
)

// Tokenはトークンを表します。
type Token struct {
	// Tokenはトークン文字列です。
	Token string

	// Headerはヘッダ名を指定します。デフォルトは `Authorization` です。
	Header string
}

// TokenSourceは、認証トークンの取得用インターフェースです。
//
// ライブラリはこのインターフェースをWebSocket認証時に呼び出します。
type TokenSource interface {
	Token() (*Token, error)
}

// TokenSourceFuncは、関数をTokenSourceとして扱うためのアダプタです。
type TokenSourceFunc func() (*Token, error)

// Tokenは、f()を呼び出します。
func (f TokenSourceFunc) Token() (*Token, error) {
	return f()
}

// StaticTokenSourceは、静的に設定されたトークンを常に返却するTokenSource実装です。
type StaticTokenSource struct {
	StaticToken *Token
}

// TokenはTokenを返却します。
func (ts *StaticTokenSource) Token() (*Token, error) {
	if ts.StaticToken == nil {
		return nil, nil
	}
	tk := *ts.StaticToken
	return &tk, nil
}

type oauth2TokenSource struct {
	src oauth2.TokenSource
}

// NewOAuth2TokenSourceは、OAuth2のトークンソースから `Authorization` ヘッダーのトークンを取得するTokenSourceを返却します。
//
// トークンは `Bearer <アクセストークン>` の形式になります。
func NewOAuth2TokenSource(src oauth2.TokenSource) TokenSource {
	return &oauth2TokenSource{src: src}
}

func (s *oauth2TokenSource) Token() (*Token, error) {
	tk, err := s.src.Token()
	if err != nil {
		return nil, errors.Errorf("failed to retrieve oauth2 token: %w", err)
	}
	return &Token{
		Token:  tk.Type() + " " + tk.AccessToken,
		Header: "Authorization",
	}, nil
}
