package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Unique-violation messages per dialect. The translated-error path covers
// gorm.ErrDuplicatedKey; raw Exec/Raw calls surface the driver text instead,
// so the port reservation backstop matches on both.
var duplicateKeyMarkers = []string{
	"duplicate key value violates unique constraint", // postgres 23505
	"Error 1062",                                     // mysql
	"UNIQUE constraint failed",                       // sqlite
}

// IsDuplicateKeyErr reports whether err is a unique-constraint violation on
// any of the supported dialects.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
