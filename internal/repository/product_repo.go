package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/01moynul/selecta-golang/internal/database"
	"github.com/01moynul/selecta-golang/internal/models"
)

type ProductRepo struct {
	db *database.DB
}

func NewProductRepo(db *database.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// ActiveByIDs returns the active products among ids, keyed by id.
// Missing or inactive ids are simply absent from the map.
func (r *ProductRepo) ActiveByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	out := make(map[int64]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, 0, len(ids)+1)
	args = append(args, true)
	for _, id := range ids {
		args = append(args, id)
	}

	query := r.db.Rebind(`
		SELECT id, name, category, price, image, active
		FROM products
		WHERE active = ? AND id IN (` + placeholders + `)`)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.ImageRef, &p.Active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ProductFilter narrows a catalogue search. Zero values are ignored.
type ProductFilter struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Search lists active products matching f, cheapest first.
func (r *ProductRepo) Search(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var qb strings.Builder
	args := []any{true}

	qb.WriteString(`
		SELECT id, name, category, price, image, active
		FROM products
		WHERE active = ?`)

	if f.Category != "" {
		qb.WriteString(" AND category = ?")
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		qb.WriteString(" AND price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		qb.WriteString(" AND price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Query != "" {
		qb.WriteString(" AND LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Query)+"%")
	}
	qb.WriteString(" ORDER BY price, id")

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(qb.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.ImageRef, &p.Active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetActive returns one active product, or ErrNotFound.
func (r *ProductRepo) GetActive(ctx context.Context, id int64) (*models.Product, error) {
	found, err := r.ActiveByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	p, ok := found[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
