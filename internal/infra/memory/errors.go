package memory

import "errors"

// DBのCHECK制約違反に相当
var errCheckViolation = errors.New("check constraint violation")
