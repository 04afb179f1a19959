package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dshills/kitchencheck/internal/logging"
)

// SQL is a Backend over a gorm connection.
type SQL struct {
	db  *gorm.DB
	log logging.Logger
}

// OpenSQLite opens (creating if needed) a SQLite file and migrates it.
func OpenSQLite(path string, slow time.Duration, log logging.Logger) (*SQL, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create database dir: %w", err)
			}
		}
	}
	return openGorm(sqlite.Open(path), "sqlite", slow, log)
}

// OpenMySQL connects to a MySQL server and migrates it.
func OpenMySQL(dsn string, slow time.Duration, log logging.Logger) (*SQL, error) {
	return openGorm(mysql.Open(dsn), "mysql", slow, log)
}

func openGorm(dialector gorm.Dialector, name string, slow time.Duration, log logging.Logger) (*SQL, error) {
	if log == nil {
		log = logging.Discard()
	}
	log = log.Module("store")
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormAdapter(log, slow),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", name, err)
	}
	s := &SQL{db: db, log: log}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	log.Info("database ready", logging.String("driver", name))
	return s, nil
}

func (s *SQL) migrate() error {
	for name, model := range tables {
		if err := s.db.Table(name).AutoMigrate(model); err != nil {
			return fmt.Errorf("store: migrate %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQL) table(ctx context.Context, collection string) (*gorm.DB, error) {
	if _, ok := tables[collection]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return s.db.WithContext(ctx).Table(collection), nil
}

// Select runs q against collection.
func (s *SQL) Select(ctx context.Context, collection string, q Query) ([]Row, error) {
	tx, err := s.table(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, p := range q.Where {
		if err := validIdent(p.Column); err != nil {
			return nil, err
		}
		switch p.Op {
		case OpEq:
			tx = tx.Where(p.Column+" = ?", p.Value)
		case OpBetween:
			tx = tx.Where(p.Column+" BETWEEN ? AND ?", p.Value, p.Upper)
		default:
			return nil, fmt.Errorf("store: unsupported operator %d", p.Op)
		}
	}
	if q.OrderBy != "" {
		if err := validIdent(q.OrderBy); err != nil {
			return nil, err
		}
		order := q.OrderBy
		if q.Desc {
			order += " DESC"
		}
		tx = tx.Order(order)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var found []map[string]any
	if err := tx.Find(&found).Error; err != nil {
		return nil, fmt.Errorf("store: select %s: %w", collection, err)
	}
	rows := make([]Row, len(found))
	for i, m := range found {
		rows[i] = Row(m)
	}
	return rows, nil
}

// Insert adds one row.
func (s *SQL) Insert(ctx context.Context, collection string, row Row) error {
	tx, err := s.table(ctx, collection)
	if err != nil {
		return err
	}
	if err := tx.Create(map[string]any(row)).Error; err != nil {
		return fmt.Errorf("store: insert %s: %w", collection, err)
	}
	return nil
}

// Update changes the given fields of the row keyed by id.
func (s *SQL) Update(ctx context.Context, collection, id string, fields Row) error {
	tx, err := s.table(ctx, collection)
	if err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Updates(map[string]any(fields))
	if res.Error != nil {
		return fmt.Errorf("store: update %s: %w", collection, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row keyed by id.
func (s *SQL) Delete(ctx context.Context, collection, id string) error {
	if _, ok := tables[collection]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	res := s.db.WithContext(ctx).Exec("DELETE FROM "+collection+" WHERE id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store: delete %s: %w", collection, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
