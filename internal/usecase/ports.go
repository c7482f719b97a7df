package usecase

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 受け取りトークンの発行。推測できない値を返す。
type TokenGenerator interface {
	NewToken() (string, error)
}

// 操作ごとの結果（ok / not_found / conflict ...）を数える
type OutcomeRecorder interface {
	Record(operation string, outcome string)
}

type NopRecorder struct{}

func (NopRecorder) Record(string, string) {}

// IDの形式チェック。uuidでなければ存在しない扱い
func isID(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func auditJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
