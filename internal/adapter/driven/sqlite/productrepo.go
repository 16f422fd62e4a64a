package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/catalogapi/internal/domain/model"
	"github.com/ericfisherdev/catalogapi/internal/domain/port/driven"
	"github.com/ericfisherdev/catalogapi/internal/metrics"
	"github.com/ericfisherdev/catalogapi/internal/sqlbind"
)

// Compile-time interface satisfaction check.
var _ driven.ProductStore = (*ProductRepo)(nil)

const (
	insertProductSQL = `INSERT INTO products (name, category, color, size, image_url, price) VALUES (?, ?, ?, ?, ?, ?)`
	selectProductSQL = `SELECT id, name, category, color, size, image_url, price FROM products WHERE 1=1`
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ProductRepo is the SQLite implementation of the ProductStore port interface.
// All statements are written with positional placeholders and pass through
// sqlbind before they reach the driver.
type ProductRepo struct {
	db      *DB
	timeout time.Duration
	metrics *metrics.Registry
}

// NewProductRepo creates a new ProductRepo backed by the given DB. Every call
// is bounded by timeout; a zero timeout leaves the caller's deadline alone.
// m may be nil.
func NewProductRepo(db *DB, timeout time.Duration, m *metrics.Registry) *ProductRepo {
	return &ProductRepo{db: db, timeout: timeout, metrics: m}
}

// Insert writes all products in a single transaction and returns their IDs in
// input order together with the total number of affected rows.
func (r *ProductRepo) Insert(ctx context.Context, products []model.Product) (model.InsertResult, error) {
	if len(products) == 0 {
		return model.InsertResult{IDs: []int64{}}, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.InsertResult{}, fmt.Errorf("begin insert products: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := model.InsertResult{IDs: make([]int64, 0, len(products))}
	for i, p := range products {
		res, err := r.exec(ctx, tx, "insert", insertProductSQL,
			p.Name, p.Category, p.Color, p.Size, p.ImageURL, p.Price)
		if err != nil {
			return model.InsertResult{}, fmt.Errorf("insert product %d: %w", i, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return model.InsertResult{}, fmt.Errorf("read id of product %d: %w", i, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return model.InsertResult{}, fmt.Errorf("check rows affected: %w", err)
		}

		result.IDs = append(result.IDs, id)
		result.AffectedRows += affected
	}

	if err := tx.Commit(); err != nil {
		return model.InsertResult{}, fmt.Errorf("commit insert products: %w", err)
	}

	r.metrics.AddInserted(len(result.IDs))
	return result, nil
}

// List returns all products matching the filter, ordered by ID.
func (r *ProductRepo) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query, args := buildListQuery(filter)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.query(ctx, r.db.Reader, "list", query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Color, &p.Size, &p.ImageURL, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// buildListQuery appends one positional condition per non-empty filter field.
func buildListQuery(filter model.ProductFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(selectProductSQL)
	if filter.IsEmpty() {
		b.WriteString(" ORDER BY id")
		return b.String(), nil
	}

	var args []any

	if filter.Category != "" {
		b.WriteString(" AND category = ?")
		args = append(args, filter.Category)
	}
	if filter.Color != "" {
		b.WriteString(" AND color = ?")
		args = append(args, filter.Color)
	}
	if filter.Size != "" {
		b.WriteString(" AND size = ?")
		args = append(args, filter.Size)
	}

	b.WriteString(" ORDER BY id")
	return b.String(), args
}

// exec binds template and runs it on e.
func (r *ProductRepo) exec(ctx context.Context, e execer, op, template string, args ...any) (sql.Result, error) {
	q, err := sqlbind.Bind(template, args...)
	if err != nil {
		r.metrics.ObserveQuery(op, err)
		return nil, err
	}
	res, err := e.ExecContext(ctx, q.SQL, q.Args()...)
	r.metrics.ObserveQuery(op, err)
	return res, err
}

// query binds template and runs it on qr.
func (r *ProductRepo) query(ctx context.Context, qr querier, op, template string, args ...any) (*sql.Rows, error) {
	q, err := sqlbind.Bind(template, args...)
	if err != nil {
		r.metrics.ObserveQuery(op, err)
		return nil, err
	}
	rows, err := qr.QueryContext(ctx, q.SQL, q.Args()...)
	r.metrics.ObserveQuery(op, err)
	return rows, err
}

func (r *ProductRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
