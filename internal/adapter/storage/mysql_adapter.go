package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/grocery-till/internal/core/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(64) NOT NULL UNIQUE,
		unit_price DECIMAL(10,2) NOT NULL,
		stock INT NOT NULL,
		version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id CHAR(36) PRIMARY KEY,
		total DECIMAL(12,2) NOT NULL,
		paid DECIMAL(12,2) NOT NULL,
		change_amount DECIMAL(12,2) NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		sale_id CHAR(36) NOT NULL,
		line_no INT NOT NULL,
		product_name VARCHAR(64) NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		quantity INT NOT NULL,
		line_total DECIMAL(12,2) NOT NULL,
		PRIMARY KEY (sale_id, line_no)
	)`,
}

// MySQLAdapter keeps the catalog and stock in the products table and writes
// paid sales to sales/sale_items.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// SeedProducts upserts the configured inventory, resetting price and stock of
// products that already exist.
func (m *MySQLAdapter) SeedProducts(ctx context.Context, products []domain.Product) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (name, unit_price, stock, version)
			VALUES (?, ?, ?, 0)
			ON DUPLICATE KEY UPDATE
				unit_price = VALUES(unit_price), stock = VALUES(stock),
				version = version + 1, updated_at = NOW()`,
			p.Name, p.UnitPrice, p.Stock,
		)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name, unit_price, stock FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.Name, &p.UnitPrice, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (m *MySQLAdapter) FindProduct(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	err := m.db.QueryRowContext(ctx, `
		SELECT name, unit_price, stock
		FROM products WHERE LOWER(name) = ?
		ORDER BY id LIMIT 1`, domain.ProductKey(name),
	).Scan(&p.Name, &p.UnitPrice, &p.Stock)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	return &p, nil
}

func (m *MySQLAdapter) DecrementStock(ctx context.Context, name string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, version = version + 1, updated_at = NOW()
		WHERE LOWER(name) = ? AND stock >= ?`,
		quantity, domain.ProductKey(name), quantity,
	)
	if err != nil {
		return false, fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLAdapter) IncrementStock(ctx context.Context, name string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + ?, version = version + 1, updated_at = NOW()
		WHERE LOWER(name) = ?`,
		quantity, domain.ProductKey(name),
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (m *MySQLAdapter) GetStock(ctx context.Context, name string) (int, error) {
	var stock int
	err := m.db.QueryRowContext(ctx, `
		SELECT stock FROM products WHERE LOWER(name) = ?
		ORDER BY id LIMIT 1`, domain.ProductKey(name),
	).Scan(&stock)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query stock: %w", err)
	}

	return stock, nil
}

func (m *MySQLAdapter) SaveSale(ctx context.Context, sale domain.Sale) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, total, paid, change_amount, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sale.ID, sale.Total, sale.Paid, sale.Change, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, item := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, line_no, product_name, unit_price, quantity, line_total)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sale.ID, i+1, item.Product.Name, item.Product.UnitPrice, item.Quantity, item.LineTotal(),
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}

	return tx.Commit()
}
