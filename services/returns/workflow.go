// Package returns handles return and refund requests against delivered order lines.
package returns

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/events"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/Raqibreyaz/EcommerceBackend/services/order"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MinPhotos       = 3
	MaxPhotos       = 5
	MinReasonLength = 25
)

// returnable lists the line states a new return request may start from.
var returnable = []models.ReturnStatus{models.ReturnNotRequested, models.ReturnRejected}

type CreateInput struct {
	OrderID       uint
	Key           models.VariantKey
	Quantity      int
	Reason        string
	Photos        []media.Asset
	PickupAddress models.Address
	Replace       bool
	// PerUnitRefund overrides the refund per unit. It defaults to the price paid for one unit.
	PerUnitRefund *decimal.Decimal
}

type Workflow struct {
	db      *gorm.DB
	catalog catalog.VariantCatalog
	ledger  *order.Ledger
	media   media.Store
	events  events.Publisher
	log     logrus.FieldLogger
	now     func() time.Time
}

func New(db *gorm.DB, cat catalog.VariantCatalog, ledger *order.Ledger, store media.Store, pub events.Publisher, log logrus.FieldLogger) *Workflow {
	return &Workflow{db: db, catalog: cat, ledger: ledger, media: store, events: pub, log: log, now: time.Now}
}

func validateCreate(in CreateInput) error {
	if n := len(in.Photos); n < MinPhotos || n > MaxPhotos {
		return apperror.Validation("between %d and %d photos are required, got %d", MinPhotos, MaxPhotos, n)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Reason)) < MinReasonLength {
		return apperror.Validation("reason must be at least %d characters", MinReasonLength)
	}
	if !in.PickupAddress.Complete() {
		return apperror.Validation("pickup address is incomplete")
	}
	if in.Quantity <= 0 {
		return apperror.Validation("quantity must be positive")
	}
	return nil
}

// CreateReturnRequest files a return for one line of a delivered order owned by userID
// and marks that line as pending return.
func (w *Workflow) CreateReturnRequest(ctx context.Context, userID string, in CreateInput) (req *models.ReturnRequest, err error) {
	defer func() {
		if err != nil {
			for _, a := range in.Photos {
				if derr := w.media.Delete(ctx, a.PublicID); derr != nil {
					w.log.WithError(derr).WithField("public_id", a.PublicID).Warn("failed to delete return photo")
				}
			}
		}
	}()

	if err := validateCreate(in); err != nil {
		return nil, err
	}

	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Preload("Items").First(&o, in.OrderID).Error; err != nil {
			return apperror.FromDB(err, "order")
		}
		if o.UserID != userID {
			return apperror.NotFound("order not found")
		}
		if o.DeliveryStatus != models.DeliveryDelivered {
			return apperror.Validation("only delivered orders can be returned")
		}
		line := o.Line(in.Key)
		if line == nil {
			return apperror.NotFound("order line not found")
		}
		if !slices.Contains(returnable, line.ReturnStatus) {
			return apperror.Validation("a return for this product is already %s", line.ReturnStatus)
		}
		if in.Quantity > line.Quantity {
			return apperror.Validation("cannot return %d of %d purchased", in.Quantity, line.Quantity)
		}

		p, err := w.catalog.WithTx(tx).Product(ctx, in.Key.ProductID)
		if err != nil {
			return err
		}
		if !p.IsReturnable {
			return apperror.Validation("%s is not returnable", p.Name)
		}

		perUnit := line.PaidUnitPrice()
		if in.PerUnitRefund != nil {
			if !in.PerUnitRefund.IsPositive() || in.PerUnitRefund.GreaterThan(perUnit) {
				return apperror.Validation("refund per unit must be between 0 and %s", perUnit)
			}
			perUnit = *in.PerUnitRefund
		}

		photos := make([]string, 0, len(in.Photos))
		for _, a := range in.Photos {
			photos = append(photos, a.URL)
		}
		req = &models.ReturnRequest{
			UserID:        userID,
			OrderID:       o.ID,
			ProductID:     in.Key.ProductID,
			Color:         in.Key.Color,
			Size:          in.Key.Size,
			Quantity:      in.Quantity,
			RefundAmount:  perUnit.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2),
			Reason:        strings.TrimSpace(in.Reason),
			Photos:        photos,
			PickupAddress: in.PickupAddress,
			Replace:       in.Replace,
			Status:        models.ReturnPending,
		}
		if err := tx.Create(req).Error; err != nil {
			return errors.Wrap(err, "store return request")
		}
		return w.ledger.WithTx(tx).MoveLineReturnStatus(ctx, o.ID, in.Key, returnable, models.ReturnPending)
	})
	if err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{"return_id": req.ID, "order_id": req.OrderID, "user_id": userID}).Info("return requested")
	w.publish(req)
	return req, nil
}

// UpdateStatus approves or rejects a pending request. Approval puts the returned quantity back
// in stock. Either way the order line takes the new status, all in one transaction.
func (w *Workflow) UpdateStatus(ctx context.Context, requestID uint, status models.ReturnStatus) (*models.ReturnRequest, error) {
	if status != models.ReturnApproved && status != models.ReturnRejected {
		return nil, apperror.Validation("status must be %q or %q", models.ReturnApproved, models.ReturnRejected)
	}

	var req models.ReturnRequest
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, requestID).Error; err != nil {
			return apperror.FromDB(err, "return request")
		}
		if req.Status != models.ReturnPending {
			return apperror.Validation("return request is already %s", req.Status)
		}

		res := tx.Model(&models.ReturnRequest{}).
			Where("id = ? AND status = ?", req.ID, models.ReturnPending).
			Update("status", status)
		if res.Error != nil {
			return errors.Wrap(res.Error, "update return request")
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("return request %d changed concurrently", req.ID)
		}
		req.Status = status

		if status == models.ReturnApproved {
			err := w.catalog.WithTx(tx).IncrementStock(ctx, req.ProductID, req.Color, req.Size, req.Quantity)
			if errors.Is(err, apperror.ErrNotFound) {
				w.log.WithFields(logrus.Fields{"return_id": req.ID, "product_id": req.ProductID}).
					Warn("returned variant no longer in catalog, stock not credited")
			} else if err != nil {
				return err
			}
		}
		return w.ledger.WithTx(tx).MoveLineReturnStatus(ctx, req.OrderID, req.Key(), []models.ReturnStatus{models.ReturnPending}, status)
	})
	if err != nil {
		return nil, err
	}

	w.log.WithFields(logrus.Fields{"return_id": req.ID, "status": status}).Info("return request updated")
	w.publish(&req)
	return &req, nil
}

// Summary is a return request joined with display names for the admin listing.
type Summary struct {
	ID           uint                `json:"id"`
	OrderID      uint                `json:"order_id"`
	UserID       string              `json:"user_id"`
	CustomerName string              `json:"customer_name"`
	ProductID    uint                `json:"product_id"`
	ProductName  string              `json:"product_name"`
	Color        string              `json:"color"`
	Size         string              `json:"size"`
	Quantity     int                 `json:"quantity"`
	RefundAmount decimal.Decimal     `json:"refund_amount"`
	Replace      bool                `json:"replace"`
	Status       models.ReturnStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
}

type Page struct {
	Requests   []Summary `json:"return_requests"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// ListRequests returns requests newest first.
func (w *Workflow) ListRequests(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	db := w.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.ReturnRequest{}).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count return requests")
	}

	var reqs []models.ReturnRequest
	err := db.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list return requests")
	}

	userIDs := make([]string, 0, len(reqs))
	productIDs := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		userIDs = append(userIDs, r.UserID)
		productIDs = append(productIDs, r.ProductID)
	}
	customers := map[string]string{}
	products := map[uint]string{}
	if len(reqs) > 0 {
		var users []models.User
		if err := db.Select("id", "name").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, errors.Wrap(err, "load customers")
		}
		for _, u := range users {
			customers[u.ID] = u.Name
		}
		var ps []models.Product
		if err := db.Select("id", "name").Where("id IN ?", productIDs).Find(&ps).Error; err != nil {
			return nil, errors.Wrap(err, "load products")
		}
		for _, p := range ps {
			products[p.ID] = p.Name
		}
	}

	out := make([]Summary, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, Summary{
			ID:           r.ID,
			OrderID:      r.OrderID,
			UserID:       r.UserID,
			CustomerName: customers[r.UserID],
			ProductID:    r.ProductID,
			ProductName:  products[r.ProductID],
			Color:        r.Color,
			Size:         r.Size,
			Quantity:     r.Quantity,
			RefundAmount: r.RefundAmount,
			Replace:      r.Replace,
			Status:       r.Status,
			CreatedAt:    r.CreatedAt,
		})
	}
	return &Page{
		Requests:   out,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (w *Workflow) publish(req *models.ReturnRequest) {
	w.events.Publish(events.Event{
		Type:      events.OrderReturnStatus,
		OrderID:   req.OrderID,
		UserID:    req.UserID,
		Status:    string(req.Status),
		ProductID: req.ProductID,
		Color:     req.Color,
		Size:      req.Size,
		At:        w.now(),
	})
}
