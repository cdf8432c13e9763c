package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// uniqueViolationCode — SQLSTATE нарушения уникальности в Postgres
const uniqueViolationCode = "23505"

// isUniqueViolation проверяет unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// mapError переводит ошибки GORM/драйвера в ошибки приложения
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case isUniqueViolation(err):
		return apperrors.ErrConflict
	default:
		return err
	}
}

// conn возвращает tx, если он передан, иначе базовое подключение с контекстом
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
