package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// Renderer はトークン文字列をQRコードのPNGにする。
type Renderer struct {
	size  int
	level goqrcode.RecoveryLevel
}

// 256px、誤り訂正はLow
func NewRenderer() *Renderer {
	return &Renderer{size: 256, level: goqrcode.Low}
}

func (r *Renderer) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("empty content")
	}
	png, err := goqrcode.Encode(content, r.level, r.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// <img src=...> にそのまま使える data URL
func (r *Renderer) DataURL(content string) (string, error) {
	png, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
