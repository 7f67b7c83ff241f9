package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDは保存時に採番する
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// 一意制約違反。TranslateError を有効にした *gorm.DB が前提
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
