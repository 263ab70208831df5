package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

const productColumns = `id, seller_id, name, description, price, currency, stock, primary_category,
	sub_category, image_urls, ai_enabled, status, rejection_reason, created_at, updated_at`

type productRow struct {
	ID              uuid.UUID      `db:"id"`
	SellerID        uuid.UUID      `db:"seller_id"`
	Name            string         `db:"name"`
	Description     string         `db:"description"`
	Price           float64        `db:"price"`
	Currency        string         `db:"currency"`
	Stock           int            `db:"stock"`
	PrimaryCategory string         `db:"primary_category"`
	SubCategory     string         `db:"sub_category"`
	ImageURLs       pq.StringArray `db:"image_urls"`
	AIEnabled       bool           `db:"ai_enabled"`
	Status          string         `db:"status"`
	RejectionReason sql.NullString `db:"rejection_reason"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r productRow) toEntity() *entity.Product {
	p := &entity.Product{
		ID:              r.ID,
		SellerID:        r.SellerID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           valueobject.Money{Amount: r.Price, Currency: r.Currency},
		Stock:           r.Stock,
		PrimaryCategory: r.PrimaryCategory,
		SubCategory:     r.SubCategory,
		ImageURLs:       []string(r.ImageURLs),
		AIEnabled:       r.AIEnabled,
		Status:          valueobject.ListingStatus(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.RejectionReason.Valid {
		reason := r.RejectionReason.String
		p.RejectionReason = &reason
	}
	return p
}

// ProductRepository - хранилище товаров в PostgreSQL.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.SellerID,
		p.Name,
		p.Description,
		p.Price.Amount,
		p.Price.Currency,
		p.Stock,
		p.PrimaryCategory,
		p.SubCategory,
		pq.Array(p.ImageURLs),
		p.AIEnabled,
		string(p.Status),
		p.RejectionReason,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperror.Wrap(err, apperror.ErrCodeConflict, "товар уже создан")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать товар")
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product, expected valueobject.ListingStatus) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, currency = $5, stock = $6,
		    primary_category = $7, sub_category = $8, image_urls = $9, ai_enabled = $10,
		    status = $11, rejection_reason = $12, updated_at = $13
		WHERE id = $1 AND status = $14
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price.Amount,
		p.Price.Currency,
		p.Stock,
		p.PrimaryCategory,
		p.SubCategory,
		pq.Array(p.ImageURLs),
		p.AIEnabled,
		string(p.Status),
		p.RejectionReason,
		p.UpdatedAt,
		string(expected),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить товар")
	}
	return r.requireAffected(ctx, result, p.ID, apperror.ErrProductStateChanged)
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1 AND status <> $2`, id, string(valueobject.ListingStatusActive))
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить товар")
	}
	return r.requireAffected(ctx, result, id, apperror.ErrProductPublished)
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var row productRow
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить товар")
	}
	return row.toEntity(), nil
}

func (r *ProductRepository) FindBySellerID(ctx context.Context, sellerID uuid.UUID, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE seller_id = ?`
	args := []interface{}{sellerID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список товаров")
	}

	products := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toEntity())
	}
	return products, nil
}

func (r *ProductRepository) CountByStatus(ctx context.Context, sellerID uuid.UUID) (map[valueobject.ListingStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM products WHERE seller_id = $1 GROUP BY status`

	if err := r.db.SelectContext(ctx, &rows, query, sellerID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать товары")
	}

	counts := make(map[valueobject.ListingStatus]int, len(valueobject.AllListingStatuses))
	for _, s := range valueobject.AllListingStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[valueobject.ListingStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// requireAffected отличает отсутствующий товар от товара, чей статус
// не прошёл условие запроса: во втором случае возвращается conflictErr.
func (r *ProductRepository) requireAffected(ctx context.Context, result sql.Result, id uuid.UUID, conflictErr error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат запроса")
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить товар")
	}
	if !exists {
		return apperror.ErrProductNotFound
	}
	return conflictErr
}
