package token_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"wastenot/internal/infra/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_Format(t *testing.T) {
	g := token.NewGenerator()

	tok, err := g.NewToken()
	require.NoError(t, err)
	assert.Len(t, tok, 24)
	assert.True(t, strings.HasPrefix(tok, token.Prefix))

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(tok, token.Prefix))
	require.NoError(t, err)
	assert.Len(t, raw, 16)
}

func TestNewToken_Unique(t *testing.T) {
	g := token.NewGenerator()

	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		tok, err := g.NewToken()
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token %s", tok)
		seen[tok] = struct{}{}
	}
}

func TestNewToken_Deterministic(t *testing.T) {
	src := bytes.Repeat([]byte{0xff}, 16)
	g := token.NewGeneratorWithReader(bytes.NewReader(src))

	tok, err := g.NewToken()
	require.NoError(t, err)
	assert.Equal(t, "WN"+strings.Repeat("_", 21)+"w", tok)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestNewToken_ReaderError(t *testing.T) {
	g := token.NewGeneratorWithReader(failingReader{})

	_, err := g.NewToken()
	assert.Error(t, err)

	//足りない場合もエラー
	short := token.NewGeneratorWithReader(bytes.NewReader([]byte{1, 2, 3}))
	_, err = short.NewToken()
	assert.Error(t, err)
}
