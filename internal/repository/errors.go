package repository

import "errors"

var ErrNotFound = errors.New("not found")

// 一意制約違反など
var ErrDuplicate = errors.New("duplicate")
