package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/services/core/internal/database"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

type ProductRepositoryInterface interface {
	// ListProducts returns the owner's products, newest first.
	ListProducts(ctx context.Context, params model.ProductListParams) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CountProducts(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type ProductRepository struct {
	db database.DBTX
}

func NewProductRepository(db database.DBTX) ProductRepositoryInterface {
	return &ProductRepository{db: db}
}

const productColumns = `id, user_id, name, price, description, image_url, active, created_at`

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Price, &p.Description, &p.ImageURL, &p.Active, &p.CreatedAt)
	return p, err
}

func (r *ProductRepository) ListProducts(ctx context.Context, params model.ProductListParams) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE user_id = $1 AND (NOT $2::boolean OR active)
		ORDER BY created_at DESC, id DESC`, params.OwnerID, params.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return model.Product{}, notFound(err)
	}
	return p, nil
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (id, user_id, name, price, description, image_url, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		p.ID, p.UserID, p.Name, p.Price, p.Description, p.ImageURL, p.Active, p.CreatedAt,
	)
	created, err := scanProduct(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, err
	}
	return created, nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) CountProducts(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE user_id = $1`, ownerID).Scan(&n)
	return n, err
}
