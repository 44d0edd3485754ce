package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by identifier matches nothing.
var ErrNotFound = errors.New("record not found")

// Store is the entity repository. A Store handed to a Transaction callback is
// bound to that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside one transaction; fn must use only the Store it is given.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Page bounds a list query. Limit 0 means no limit.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Skip > 0 {
		q = q.Offset(p.Skip)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

func first[T any](q *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	err := q.Where(query, args...).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// createWithCode assigns the next code of f when *code is empty, then inserts rec.
func createWithCode[T any](ctx context.Context, s *Store, rec *T, code *string, f CodeFormat) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if *code == "" {
			c, err := nextCode(tx, f)
			if err != nil {
				return err
			}
			*code = c
		}
		return tx.Create(rec).Error
	})
}
