package dao

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Trainee{},
		&Training{},
		&Enrollment{},
		&Attendance{},
	)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation on the named constraint or index.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.Message, constraint)
}
