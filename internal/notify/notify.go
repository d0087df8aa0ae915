// Package notify fans order events out to the admin live view webhook and
// customer receipt emails. Everything here runs post-commit on a worker
// pool; a delivery failure is logged and never propagates back into the
// request that triggered it.
package notify

import (
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/guonaihong/gout"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/potonglab/barbershop/config"
	"github.com/potonglab/barbershop/internal/domain"
)

const (
	topicOrderCreated = "order:created"
	topicOrderStatus  = "order:status"
)

type Notifier struct {
	cfg  config.NotifyConfig
	bus  EventBus.Bus
	pool *ants.Pool
	db   *gorm.DB
}

func NewNotifier(cfg config.NotifyConfig, db *gorm.DB) (*Notifier, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	n := &Notifier{cfg: cfg, bus: EventBus.New(), pool: pool, db: db}
	_ = n.bus.Subscribe(topicOrderCreated, n.handleOrderCreated)
	_ = n.bus.Subscribe(topicOrderStatus, n.handleOrderStatus)
	return n, nil
}

func (n *Notifier) OrderCreated(order *domain.ProductTransaction) {
	n.bus.Publish(topicOrderCreated, order)
}

func (n *Notifier) OrderStatusChanged(order *domain.ProductTransaction) {
	n.bus.Publish(topicOrderStatus, order)
}

func (n *Notifier) Release() {
	n.pool.Release()
}

func (n *Notifier) handleOrderCreated(order *domain.ProductTransaction) {
	n.submit(func() {
		n.postWebhook("order.created", order)
		n.sendReceipt(order)
	})
}

func (n *Notifier) handleOrderStatus(order *domain.ProductTransaction) {
	n.submit(func() {
		n.postWebhook("order.status_changed", order)
	})
}

func (n *Notifier) submit(task func()) {
	if err := n.pool.Submit(task); err != nil {
		zap.L().Warn("notify pool saturated, event dropped", zap.Error(err))
	}
}

func (n *Notifier) postWebhook(event string, order *domain.ProductTransaction) {
	if n.cfg.WebhookURL == "" {
		return
	}
	err := gout.POST(n.cfg.WebhookURL).
		SetTimeout(5 * time.Second).
		SetJSON(gout.H{
			"event": event,
			"order": order,
		}).Do()
	if err != nil {
		zap.L().Warn("order webhook delivery failed",
			zap.String("event", event),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

func (n *Notifier) sendReceipt(order *domain.ProductTransaction) {
	if n.cfg.SMTPHost == "" {
		return
	}

	var user domain.User
	if err := n.db.First(&user, "id = ?", order.UserID).Error; err != nil {
		zap.L().Warn("receipt skipped, user lookup failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.MailFrom)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", "Your order receipt")
	m.SetBody("text/plain", receiptBody(&user, order))

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPasswd)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Warn("receipt email delivery failed",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}

func receiptBody(user *domain.User, order *domain.ProductTransaction) string {
	body := fmt.Sprintf("Hi %s,\n\nThanks for your order #%d.\n\n", user.Name, order.OrderNo)
	for _, item := range order.Items {
		body += fmt.Sprintf("%s x%d @ %.2f\n", item.ProductID, item.Quantity, item.PriceAtPurchase)
	}
	body += fmt.Sprintf("\nTotal: %.2f\n", order.TotalPrice)
	return body
}
