package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, apperrors.ErrNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), apperrors.ErrNotFound},
		{"pgconn unique", &pgconn.PgError{Code: "23505"}, apperrors.ErrConflict},
		{"lib/pq unique", &pq.Error{Code: "23505"}, apperrors.ErrConflict},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, apperrors.ErrConflict},
		{"pgconn other code", &pgconn.PgError{Code: "23503"}, nil},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			if tt.want == nil && tt.in != nil {
				assert.Equal(t, tt.in, got, "Неизвестная ошибка должна возвращаться без изменений")
				return
			}
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}
