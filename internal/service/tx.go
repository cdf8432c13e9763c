package service

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxRunner запускает функцию в транзакции. *gorm.DB удовлетворяет этому интерфейсу.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
