package checkout

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/errs"
)

// Repository handles read access to product transactions. Relations needed
// by the response shaping are preloaded here so the transformer never has
// to reach back into the database.
type Repository interface {
	List(ctx context.Context, page, pageSize int) ([]*domain.ProductTransaction, int64, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*domain.ProductTransaction, int64, error)
	GetByID(ctx context.Context, id string) (*domain.ProductTransaction, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context, page, pageSize int) ([]*domain.ProductTransaction, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx), page, pageSize)
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*domain.ProductTransaction, int64, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return r.list(ctx, q, page, pageSize)
}

func (r *GormRepository) list(ctx context.Context, q *gorm.DB, page, pageSize int) ([]*domain.ProductTransaction, int64, error) {
	var total int64
	if err := q.Model(&domain.ProductTransaction{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	var rows []*domain.ProductTransaction
	err := q.
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	return rows, total, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (*domain.ProductTransaction, error) {
	var order domain.ProductTransaction
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindNotFound, "Product transaction not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "load order")
	}
	return &order, nil
}
