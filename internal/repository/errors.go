package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 表示查詢的資料不存在
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
