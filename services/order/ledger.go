// Package order records checkouts and drives their delivery and return state.
package order

import (
	"context"
	"sort"
	"time"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/events"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/cart"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const DefaultCancelWindow = 3 * time.Hour

type LineInput struct {
	ProductID uint
	Color     string
	Size      string
	Quantity  int
}

func (l LineInput) Key() models.VariantKey {
	return models.VariantKey{ProductID: l.ProductID, Color: l.Color, Size: l.Size}
}

// Totals are the amounts the client saw at checkout. Nil fields are computed.
type Totals struct {
	TotalPrice    *decimal.Decimal
	TotalDiscount *decimal.Decimal
	TotalAmount   *decimal.Decimal
}

type CreateInput struct {
	Lines           []LineInput
	DeliveryAddress models.Address
	Payment         models.PaymentDetails
	Totals          Totals
}

type Ledger struct {
	db           *gorm.DB
	catalog      catalog.VariantCatalog
	carts        *cart.Service
	events       events.Publisher
	log          logrus.FieldLogger
	now          func() time.Time
	cancelWindow time.Duration
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithCancelWindow(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.cancelWindow = d
		}
	}
}

func New(db *gorm.DB, cat catalog.VariantCatalog, carts *cart.Service, pub events.Publisher, log logrus.FieldLogger, opts ...Option) *Ledger {
	l := &Ledger{
		db:           db,
		catalog:      cat,
		carts:        carts,
		events:       pub,
		log:          log,
		now:          time.Now,
		cancelWindow: DefaultCancelWindow,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithTx returns a ledger bound to tx. It does not publish events; the caller does that after commit.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	c := *l
	c.db = tx
	c.catalog = l.catalog.WithTx(tx)
	c.carts = l.carts.WithTx(tx)
	c.events = events.Discard
	return &c
}

func (l *Ledger) CancelWindow() time.Duration { return l.cancelWindow }

func newOrderRef(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()
}

func validateCreate(in CreateInput) error {
	if len(in.Lines) == 0 {
		return apperror.Validation("order must contain at least one product")
	}
	if in.Payment.GatewayOrderID == "" || in.Payment.PaymentID == "" {
		return apperror.Validation("payment details are incomplete")
	}
	if !in.DeliveryAddress.Complete() {
		return apperror.Validation("delivery address is incomplete")
	}
	seen := make(map[models.VariantKey]bool, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return apperror.Validation("quantity must be positive")
		}
		if seen[line.Key()] {
			return apperror.Validation("duplicate line for product %d (%s / %s)", line.ProductID, line.Color, line.Size)
		}
		seen[line.Key()] = true
	}
	return nil
}

// CreateOrder places an order for userID. Stock for every line is taken, the order is stored and the
// user's cart is emptied in one transaction, so a failing line leaves nothing behind.
func (l *Ledger) CreateOrder(ctx context.Context, userID string, in CreateInput) (*models.Order, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	lines := append([]LineInput(nil), in.Lines...)
	// one global lock order keeps concurrent checkouts from deadlocking
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key().Less(lines[j].Key()) })

	now := l.now()
	order := &models.Order{
		OrderRef:        newOrderRef(now),
		UserID:          userID,
		DeliveryAddress: in.DeliveryAddress,
		Payment:         in.Payment,
		DeliveryStatus:  models.DeliveryPending,
		CreatedAt:       now,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txl := l.WithTx(tx)

		ids := make([]uint, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}
		products, err := txl.catalog.Products(ctx, ids)
		if err != nil {
			return err
		}

		totalPrice, totalDiscount := decimal.Zero, decimal.Zero
		for _, line := range lines {
			p, ok := products[line.ProductID]
			if !ok {
				return apperror.NotFound("product %d not found", line.ProductID)
			}
			if err := txl.catalog.DecrementStock(ctx, line.ProductID, line.Color, line.Size, line.Quantity); err != nil {
				return err
			}

			qty := decimal.NewFromInt(int64(line.Quantity))
			totalPrice = totalPrice.Add(p.Price.Mul(qty))
			totalDiscount = totalDiscount.Add(p.UnitDiscount().Mul(qty))

			order.Items = append(order.Items, models.OrderItem{
				ProductID:    line.ProductID,
				Color:        line.Color,
				Size:         line.Size,
				ProductName:  p.Name,
				Quantity:     line.Quantity,
				UnitPrice:    p.Price,
				Discount:     p.Discount,
				Image:        p.MainImage(line.Color),
				ReturnStatus: models.ReturnNotRequested,
			})
		}

		if err := checkTotals(in.Totals, totalPrice, totalDiscount); err != nil {
			return err
		}
		order.TotalPrice = totalPrice
		order.TotalDiscount = totalDiscount
		order.TotalAmount = totalPrice.Sub(totalDiscount)

		if err := tx.Create(order).Error; err != nil {
			return apperror.FromDB(err, "order")
		}
		return txl.carts.Clear(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"order_ref": order.OrderRef,
		"user_id":   userID,
		"amount":    order.TotalAmount.String(),
	}).Info("order placed")
	l.publish(events.OrderCreated, order, string(order.DeliveryStatus))
	return order, nil
}

func checkTotals(given Totals, price, discount decimal.Decimal) error {
	if given.TotalPrice != nil && !given.TotalPrice.Equal(price) {
		return apperror.Validation("total price %s does not match %s", given.TotalPrice, price)
	}
	if given.TotalDiscount != nil && !given.TotalDiscount.Equal(discount) {
		return apperror.Validation("total discount %s does not match %s", given.TotalDiscount, discount)
	}
	if amount := price.Sub(discount); given.TotalAmount != nil && !given.TotalAmount.Equal(amount) {
		return apperror.Validation("total amount %s does not match %s", given.TotalAmount, amount)
	}
	return nil
}

// UpdateDeliveryStatus moves a pending order to delivered or cancelled.
// Cancelling is only possible within the cancel window and puts the stock back.
func (l *Ledger) UpdateDeliveryStatus(ctx context.Context, orderID uint, status models.DeliveryStatus) (*models.Order, error) {
	return l.transition(ctx, orderID, "", status)
}

// Cancel cancels one of userID's own orders.
func (l *Ledger) Cancel(ctx context.Context, userID string, orderID uint) (*models.Order, error) {
	return l.transition(ctx, orderID, userID, models.DeliveryCancelled)
}

func (l *Ledger) transition(ctx context.Context, orderID uint, ownerID string, to models.DeliveryStatus) (*models.Order, error) {
	if to != models.DeliveryDelivered && to != models.DeliveryCancelled {
		return nil, apperror.Validation("delivery status must be %q or %q", models.DeliveryDelivered, models.DeliveryCancelled)
	}

	var order models.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return apperror.FromDB(err, "order")
		}
		if ownerID != "" && order.UserID != ownerID {
			return apperror.NotFound("order not found")
		}

		now := l.now()
		if order.DeliveryStatus != models.DeliveryPending {
			if to == models.DeliveryCancelled {
				return apperror.OrderNotCancellable("order is already %s", order.DeliveryStatus)
			}
			return apperror.Validation("order is already %s", order.DeliveryStatus)
		}
		if to == models.DeliveryCancelled && now.Sub(order.CreatedAt) > l.cancelWindow {
			return apperror.OrderNotCancellable("orders can only be cancelled within %s of placement", l.cancelWindow)
		}

		updates := map[string]any{"delivery_status": to}
		if to == models.DeliveryDelivered {
			updates["delivered_at"] = now
		} else {
			updates["cancelled_at"] = now
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND delivery_status = ?", order.ID, models.DeliveryPending).
			Updates(updates)
		if res.Error != nil {
			return errors.Wrap(res.Error, "update delivery status")
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("order %d changed concurrently", order.ID)
		}

		if to == models.DeliveryCancelled {
			if err := l.restock(ctx, tx, order.Items); err != nil {
				return err
			}
		}
		var fresh models.Order
		if err := tx.Preload("Items").First(&fresh, orderID).Error; err != nil {
			return errors.Wrap(err, "reload order")
		}
		order = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{"order_id": order.ID, "status": to}).Info("delivery status changed")
	typ := events.OrderDelivered
	if to == models.DeliveryCancelled {
		typ = events.OrderCancelled
	}
	l.publish(typ, &order, string(to))
	return &order, nil
}

// restock credits the stock of cancelled lines. Variants removed from the catalog since the
// order was placed have nowhere to go and are skipped.
func (l *Ledger) restock(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error {
	items = append([]models.OrderItem(nil), items...)
	sort.Slice(items, func(i, j int) bool { return items[i].Key().Less(items[j].Key()) })

	cat := l.catalog.WithTx(tx)
	for _, it := range items {
		err := cat.IncrementStock(ctx, it.ProductID, it.Color, it.Size, it.Quantity)
		if errors.Is(err, apperror.ErrNotFound) {
			l.log.WithFields(logrus.Fields{"order_id": it.OrderID, "product_id": it.ProductID}).
				Warn("cancelled line no longer in catalog, stock not credited")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ChangeLineReturnStatus sets the return status of the line identified by key.
func (l *Ledger) ChangeLineReturnStatus(ctx context.Context, orderID uint, key models.VariantKey, status models.ReturnStatus) error {
	return l.MoveLineReturnStatus(ctx, orderID, key, nil, status)
}

// MoveLineReturnStatus is ChangeLineReturnStatus guarded by the line's current status: the update
// only applies while the line is in one of from (any status when from is empty). A line that has
// already moved on fails with Conflict, so two concurrent claims on one line cannot both succeed.
func (l *Ledger) MoveLineReturnStatus(ctx context.Context, orderID uint, key models.VariantKey, from []models.ReturnStatus, status models.ReturnStatus) error {
	if !status.Valid() {
		return apperror.Validation("invalid return status %q", status)
	}
	line := l.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ? AND color = ? AND size = ?", orderID, key.ProductID, key.Color, key.Size).
		Session(&gorm.Session{})

	guarded := line
	if len(from) > 0 {
		guarded = line.Where("return_status IN ?", from)
	}
	res := guarded.Update("return_status", status)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update return status")
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := line.Count(&n).Error; err != nil {
			return errors.Wrap(err, "look up order line")
		}
		if n == 0 {
			return apperror.NotFound("order line not found")
		}
		return apperror.Conflict("return status of this order line changed concurrently")
	}

	l.events.Publish(events.Event{
		Type:      events.OrderReturnStatus,
		OrderID:   orderID,
		Status:    string(status),
		ProductID: key.ProductID,
		Color:     key.Color,
		Size:      key.Size,
		At:        l.now(),
	})
	return nil
}

func (l *Ledger) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := l.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, apperror.FromDB(err, "order")
	}
	return &order, nil
}

type Page struct {
	Orders     []models.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

func (l *Ledger) ListUserOrders(ctx context.Context, userID string, page, limit int) (*Page, error) {
	return l.list(ctx, l.db.Where("user_id = ?", userID), page, limit)
}

// ListOrders lists every order, optionally only those in status.
func (l *Ledger) ListOrders(ctx context.Context, status models.DeliveryStatus, page, limit int) (*Page, error) {
	scope := l.db.Model(&models.Order{})
	if status != "" {
		scope = scope.Where("delivery_status = ?", status)
	}
	return l.list(ctx, scope, page, limit)
}

func (l *Ledger) list(ctx context.Context, scope *gorm.DB, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	scope = scope.WithContext(ctx).Model(&models.Order{}).Session(&gorm.Session{})

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count orders")
	}
	var orders []models.Order
	err := scope.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return &Page{
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (l *Ledger) publish(typ events.Type, order *models.Order, status string) {
	l.events.Publish(events.Event{
		Type:     typ,
		OrderID:  order.ID,
		OrderRef: order.OrderRef,
		UserID:   order.UserID,
		Status:   status,
		At:       l.now(),
	})
}
