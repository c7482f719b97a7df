package repository

import "errors"

var ErrNotFound = errors.New("not found")

// 一意制約違反（トークン重複・二重発行など）
var ErrDuplicate = errors.New("duplicate")
