package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	// 受け取りトークンの接頭辞
	Prefix = "WN"

	// 128bit
	entropyBytes = 16
)

// Generator は暗号論的乱数から受け取りトークンを作る。
// 形式: "WN" + base64url(16byte)（パディングなし、計24文字）
type Generator struct {
	rand io.Reader
}

func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// テスト用に乱数源を差し替える
func NewGeneratorWithReader(r io.Reader) *Generator {
	return &Generator{rand: r}
}

func (g *Generator) NewToken() (string, error) {
	buf := make([]byte, entropyBytes)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
