package returns

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/events"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/cart"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/Raqibreyaz/EcommerceBackend/services/order"
	"github.com/Raqibreyaz/EcommerceBackend/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const reason = "the stitching came apart after one wash"

var pickup = models.Address{HouseNo: "4B", City: "Delhi", State: "DL", Pincode: "110001"}

type fixture struct {
	db       *gorm.DB
	ledger   *order.Ledger
	workflow *Workflow
	events   *events.Recorder
	product  *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log, _ := testutil.Logger()
	store, err := media.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cat := catalog.NewStore(db)
	rec := &events.Recorder{}
	ledger := order.New(db, cat, cart.New(db, cat, log), events.Discard, log)
	return &fixture{
		db:       db,
		ledger:   ledger,
		workflow: New(db, cat, ledger, store, rec, log),
		events:   rec,
		product: testutil.SeedProduct(t, db, "Shirt", 100,
			testutil.Variant{Color: "Red", Size: "M", Stock: 10}),
	}
}

func (f *fixture) key() models.VariantKey {
	return models.VariantKey{ProductID: f.product.ID, Color: "Red", Size: "M"}
}

// deliveredOrder places an order for qty units of Red/M and marks it delivered.
func (f *fixture) deliveredOrder(t *testing.T, userID string, qty int) *models.Order {
	t.Helper()
	ctx := context.Background()
	o, err := f.ledger.CreateOrder(ctx, userID, order.CreateInput{
		Lines:           []order.LineInput{{ProductID: f.product.ID, Color: "Red", Size: "M", Quantity: qty}},
		DeliveryAddress: pickup,
		Payment:         models.PaymentDetails{GatewayOrderID: "order_1", PaymentID: "pay_1"},
	})
	require.NoError(t, err)
	o, err = f.ledger.UpdateDeliveryStatus(ctx, o.ID, models.DeliveryDelivered)
	require.NoError(t, err)
	return o
}

func photos(n int) []media.Asset {
	out := make([]media.Asset, n)
	for i := range out {
		out[i] = media.Asset{URL: fmt.Sprintf("/uploads/p%d.jpg", i), PublicID: fmt.Sprintf("p%d.jpg", i)}
	}
	return out
}

func (f *fixture) request(o *models.Order, qty int) CreateInput {
	return CreateInput{
		OrderID:       o.ID,
		Key:           f.key(),
		Quantity:      qty,
		Reason:        reason,
		Photos:        photos(3),
		PickupAddress: pickup,
	}
}

func (f *fixture) lineStatus(t *testing.T, orderID uint) models.ReturnStatus {
	t.Helper()
	o, err := f.ledger.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	return o.Line(f.key()).ReturnStatus
}

func TestCreateReturnRequest(t *testing.T) {
	f := newFixture(t)
	o := f.deliveredOrder(t, "u1", 3)

	req, err := f.workflow.CreateReturnRequest(context.Background(), "u1", f.request(o, 2))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(req.RefundAmount), "refund is unit price times quantity")
	assert.Equal(t, models.ReturnPending, req.Status)
	assert.Len(t, req.Photos, 3)
	assert.Equal(t, models.ReturnPending, f.lineStatus(t, o.ID))
	assert.Equal(t, 7, testutil.StockOf(t, f.db, f.product.ID, "Red", "M"), "requesting does not touch stock")

	var stored models.ReturnRequest
	require.NoError(t, f.db.First(&stored, req.ID).Error)
	assert.Equal(t, req.Photos, stored.Photos)
	assert.Equal(t, pickup, stored.PickupAddress)
}

func TestCreateReturnRequestRefundRate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.product.ID).
		Update("discount", decimal.NewFromInt(25)).Error)
	o := f.deliveredOrder(t, "u1", 2)

	req, err := f.workflow.CreateReturnRequest(context.Background(), "u1", f.request(o, 2))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(req.RefundAmount), "defaults to the discounted unit price")

	f2 := newFixture(t)
	o2 := f2.deliveredOrder(t, "u1", 2)
	in := f2.request(o2, 2)
	rate := decimal.NewFromInt(40)
	in.PerUnitRefund = &rate
	req, err = f2.workflow.CreateReturnRequest(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(req.RefundAmount))
}

func TestCreateReturnRequestRejects(t *testing.T) {
	tooMuch := decimal.NewFromInt(101)
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		user   string
		want   error
	}{
		{"two photos", func(in *CreateInput) { in.Photos = photos(2) }, "u1", apperror.ErrValidation},
		{"six photos", func(in *CreateInput) { in.Photos = photos(6) }, "u1", apperror.ErrValidation},
		{"short reason", func(in *CreateInput) { in.Reason = "too small" }, "u1", apperror.ErrValidation},
		{"incomplete pickup", func(in *CreateInput) { in.PickupAddress.City = "" }, "u1", apperror.ErrValidation},
		{"more than bought", func(in *CreateInput) { in.Quantity = 4 }, "u1", apperror.ErrValidation},
		{"zero quantity", func(in *CreateInput) { in.Quantity = 0 }, "u1", apperror.ErrValidation},
		{"refund above paid price", func(in *CreateInput) { in.PerUnitRefund = &tooMuch }, "u1", apperror.ErrValidation},
		{"unknown line", func(in *CreateInput) { in.Key.Size = "XL" }, "u1", apperror.ErrNotFound},
		{"someone else's order", func(*CreateInput) {}, "u2", apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			o := f.deliveredOrder(t, "u1", 3)
			in := f.request(o, 1)
			tt.mutate(&in)

			_, err := f.workflow.CreateReturnRequest(context.Background(), tt.user, in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, models.ReturnNotRequested, f.lineStatus(t, o.ID))

			var n int64
			require.NoError(t, f.db.Model(&models.ReturnRequest{}).Count(&n).Error)
			assert.Zero(t, n)
		})
	}
}

func TestCreateReturnRequestNotReturnable(t *testing.T) {
	f := newFixture(t)
	o := f.deliveredOrder(t, "u1", 1)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.product.ID).Update("is_returnable", false).Error)

	_, err := f.workflow.CreateReturnRequest(context.Background(), "u1", f.request(o, 1))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateReturnRequestNeedsDelivery(t *testing.T) {
	f := newFixture(t)
	o, err := f.ledger.CreateOrder(context.Background(), "u1", order.CreateInput{
		Lines:           []order.LineInput{{ProductID: f.product.ID, Color: "Red", Size: "M", Quantity: 1}},
		DeliveryAddress: pickup,
		Payment:         models.PaymentDetails{GatewayOrderID: "order_1", PaymentID: "pay_1"},
	})
	require.NoError(t, err)

	_, err = f.workflow.CreateReturnRequest(context.Background(), "u1", f.request(o, 1))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestApproveReturnCreditsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.deliveredOrder(t, "u1", 3)
	req, err := f.workflow.CreateReturnRequest(ctx, "u1", f.request(o, 2))
	require.NoError(t, err)

	got, err := f.workflow.UpdateStatus(ctx, req.ID, models.ReturnApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnApproved, got.Status)
	assert.Equal(t, models.ReturnApproved, f.lineStatus(t, o.ID))
	assert.Equal(t, 9, testutil.StockOf(t, f.db, f.product.ID, "Red", "M"))
	assert.Equal(t, 9, testutil.TotalStockOf(t, f.db, f.product.ID))

	_, err = f.workflow.UpdateStatus(ctx, req.ID, models.ReturnApproved)
	assert.ErrorIs(t, err, apperror.ErrValidation, "approval is terminal")
	assert.Equal(t, 9, testutil.StockOf(t, f.db, f.product.ID, "Red", "M"))

	last := f.events.Events[len(f.events.Events)-1]
	assert.Equal(t, events.OrderReturnStatus, last.Type)
	assert.Equal(t, "approved", last.Status)
}

func TestRejectReturnLeavesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.deliveredOrder(t, "u1", 3)
	req, err := f.workflow.CreateReturnRequest(ctx, "u1", f.request(o, 1))
	require.NoError(t, err)

	_, err = f.workflow.CreateReturnRequest(ctx, "u1", f.request(o, 1))
	assert.ErrorIs(t, err, apperror.ErrValidation, "one open return per line")

	_, err = f.workflow.UpdateStatus(ctx, req.ID, models.ReturnRejected)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnRejected, f.lineStatus(t, o.ID))
	assert.Equal(t, 7, testutil.StockOf(t, f.db, f.product.ID, "Red", "M"))

	// A rejected line may be asked for again.
	_, err = f.workflow.CreateReturnRequest(ctx, "u1", f.request(o, 1))
	require.NoError(t, err)
	assert.Equal(t, models.ReturnPending, f.lineStatus(t, o.ID))
}

func TestUpdateStatusRejectsInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.workflow.UpdateStatus(ctx, 1, models.ReturnPending)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = f.workflow.UpdateStatus(ctx, 404, models.ReturnApproved)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, "u1", "Asha")
	testutil.SeedUser(t, f.db, "u2", "Ravi")

	first := f.deliveredOrder(t, "u1", 1)
	second := f.deliveredOrder(t, "u2", 1)
	_, err := f.workflow.CreateReturnRequest(ctx, "u1", f.request(first, 1))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = f.workflow.CreateReturnRequest(ctx, "u2", f.request(second, 1))
	require.NoError(t, err)

	page, err := f.workflow.ListRequests(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Requests, 1)
	assert.Equal(t, "Ravi", page.Requests[0].CustomerName, "newest first")
	assert.Equal(t, "Shirt", page.Requests[0].ProductName)
	assert.True(t, decimal.NewFromInt(100).Equal(page.Requests[0].RefundAmount))

	page, err = f.workflow.ListRequests(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page.Requests, 1)
	assert.Equal(t, "Asha", page.Requests[0].CustomerName)
}

func TestCreateReturnRequestLosesLineToConcurrentClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.deliveredOrder(t, "u1", 3)

	// Another submission claims the line after this one has read it as returnable.
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:claim_line", func(d *gorm.DB) {
		if d.Statement.Schema == nil || d.Statement.Schema.Table != "return_requests" {
			return
		}
		_ = d.AddError(d.Session(&gorm.Session{NewDB: true}).Model(&models.OrderItem{}).
			Where("order_id = ?", o.ID).
			Update("return_status", models.ReturnPending).Error)
	}))

	_, err := f.workflow.CreateReturnRequest(ctx, "u1", f.request(o, 3))
	assert.ErrorIs(t, err, apperror.ErrConflict)

	var n int64
	require.NoError(t, f.db.Model(&models.ReturnRequest{}).Count(&n).Error)
	assert.Zero(t, n, "the losing request is rolled back")
	assert.Empty(t, f.events.Events)
}
