package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TxManager runs a function inside one database transaction. Repository calls made
// with the context passed to fn join that transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager returns a TxManager backed by db.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithTx commits when fn returns nil and rolls back otherwise. Nested calls reuse the
// outer transaction.
func (m *gormTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// lockingConn is conn with SELECT ... FOR UPDATE applied when ctx carries a transaction.
// SQLite has no row locks; its single writer already serializes the transaction.
func lockingConn(ctx context.Context, db *gorm.DB) *gorm.DB {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return db.WithContext(ctx)
	}
	if tx.Dialector.Name() == "sqlite" {
		return tx.WithContext(ctx)
	}
	return tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}
