package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// translateDuplicate maps unique-constraint violations to the repository sentinel.
// It relies on gorm's TranslateError; the message check covers connections
// opened without it.
func translateDuplicate(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505") {
		return sentinel
	}
	return err
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

