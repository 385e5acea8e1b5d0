package service

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxManager runs a function inside a single database transaction.
// *gorm.DB satisfies it; tests substitute an in-memory implementation.
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
