// Package checkout converts cart contents or a direct-buy request into an
// immutable order snapshot, decrementing product stock inside a single
// database transaction.
package checkout

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/internal/errs"
)

// Notifier receives post-commit order events. Implementations must not
// block; delivery failure never affects the triggering request.
type Notifier interface {
	OrderCreated(order *domain.ProductTransaction)
	OrderStatusChanged(order *domain.ProductTransaction)
}

type Input struct {
	ProductID         string
	Quantity          int
	ExpeditionService string
	PaymentMethod     string
}

type StatusInput struct {
	PaymentStatus    *string
	ExpeditionStatus *string
}

type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	notifier Notifier
}

func NewService(db *gorm.DB, node *snowflake.Node, notifier Notifier) *Service {
	return &Service{db: db, node: node, notifier: notifier}
}

// line is one resolved order line prior to persistence. cartRowID is set
// only in cart mode so the consumed row can be removed on commit.
type line struct {
	productID string
	quantity  int
	cartRowID string
}

// Checkout creates one ProductTransaction with one TransactionItem per
// distinct product line. All stock checks, decrements, inserts and cart-row
// deletions commit together or not at all. Stock rows are locked for the
// duration of the transaction so concurrent checkouts against the same
// product cannot oversell.
func (s *Service) Checkout(ctx context.Context, userID string, in Input) (*domain.ProductTransaction, error) {
	lines, err := s.resolveLines(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	order := &domain.ProductTransaction{
		OrderNo:           s.node.Generate().Int64(),
		UserID:            userID,
		ExpeditionService: defaulted(in.ExpeditionService, domain.DefaultExpeditionService),
		ExpeditionStatus:  domain.ExpeditionStatusPending,
		PaymentMethod:     defaulted(in.PaymentMethod, domain.DefaultPaymentMethod),
		PaymentStatus:     domain.PaymentStatusUnpaid,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64
		for _, l := range lines {
			product, err := lockProduct(tx, l.productID)
			if err != nil {
				return err
			}
			if product.Stock < l.quantity {
				return errs.Newf(errs.KindValidation,
					"Insufficient stock for %s. Max available: %d", product.Name, product.Stock)
			}

			total += product.Price * float64(l.quantity)
			order.Items = append(order.Items, domain.TransactionItem{
				ProductID:       l.productID,
				Quantity:        l.quantity,
				PriceAtPurchase: product.Price,
			})
		}
		order.TotalPrice = total

		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}

		for _, l := range lines {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", l.productID, l.quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", l.quantity))
			if res.Error != nil {
				return errors.Wrap(res.Error, "decrement stock")
			}
			if res.RowsAffected == 0 {
				return errs.Newf(errs.KindValidation, "Insufficient stock for product %s", l.productID)
			}
			if l.cartRowID != "" {
				if err := tx.Delete(&domain.CartItem{}, "id = ?", l.cartRowID).Error; err != nil {
					return errors.Wrap(err, "clear cart row")
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.OrderCreated(order)
	}
	return order, nil
}

func (s *Service) resolveLines(ctx context.Context, userID string, in Input) ([]line, error) {
	if in.ProductID != "" {
		if in.Quantity < 1 {
			return nil, errs.New(errs.KindValidation, "Quantity must be at least 1")
		}
		return []line{{productID: in.ProductID, quantity: in.Quantity}}, nil
	}

	var rows []*domain.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	lines := make([]line, 0, len(rows))
	for _, row := range rows {
		// Rows whose product has since been removed are skipped, not failed.
		if row.Product == nil {
			zap.L().Warn("skipping cart row with missing product",
				zap.String("cart_id", row.ID),
				zap.String("product_id", row.ProductID))
			continue
		}
		lines = append(lines, line{productID: row.ProductID, quantity: row.Quantity, cartRowID: row.ID})
	}
	if len(lines) == 0 {
		return nil, errs.New(errs.KindValidation, "Cart is empty and no direct product specified.")
	}
	return lines, nil
}

// Delete removes an order and restores each line's quantity onto the
// corresponding product's stock, the exact inverse of Checkout.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.ProductTransaction
		err := tx.Preload("Items").First(&order, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.New(errs.KindNotFound, "Product transaction not found")
		} else if err != nil {
			return errors.Wrap(err, "load order")
		}

		for _, item := range order.Items {
			// Unscoped so stock on soft-deleted products is restored too.
			err := tx.Unscoped().Model(&domain.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return errors.Wrap(err, "restore stock")
			}
		}

		if err := tx.Delete(&domain.TransactionItem{}, "transaction_id = ?", order.ID).Error; err != nil {
			return errors.Wrap(err, "delete order items")
		}
		if err := tx.Delete(&domain.ProductTransaction{}, "id = ?", order.ID).Error; err != nil {
			return errors.Wrap(err, "delete order")
		}
		return nil
	})
}

// UpdateStatus mutates the order's status fields only. Stock and line items
// are never touched here.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, in StatusInput) (*domain.ProductTransaction, error) {
	var order domain.ProductTransaction
	err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindNotFound, "Product transaction not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "load order")
	}

	if in.PaymentStatus != nil {
		order.PaymentStatus = strings.TrimSpace(*in.PaymentStatus)
	}
	if in.ExpeditionStatus != nil {
		order.ExpeditionStatus = strings.TrimSpace(*in.ExpeditionStatus)
	}

	if err := s.db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, errors.Wrap(err, "save order")
	}

	if s.notifier != nil {
		s.notifier.OrderStatusChanged(&order)
	}
	return &order, nil
}

// lockProduct reads a product under a row lock where the dialect supports
// it. SQLite serializes writers on its own.
func lockProduct(tx *gorm.DB, id string) (*domain.Product, error) {
	q := tx
	if strings.EqualFold(tx.Name(), "postgres") {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product domain.Product
	err := q.First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindNotFound, "Product not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "load product")
	}
	return &product, nil
}

func defaulted(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
