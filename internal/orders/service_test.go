package orders

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/internal/inventory"
	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/pagination"

	"github.com/vancetran/medisupply-backend/internal/coupons"
	"github.com/vancetran/medisupply-backend/internal/customers"
)

type stubOrderRepo struct {
	variants map[uuid.UUID]*models.ProductVariant
	products map[uuid.UUID]*models.Product
	orders   map[uuid.UUID]*models.Order
	items    map[uuid.UUID][]models.OrderItem

	variantUpdates []uuid.UUID
	orderUpdates   map[string]any
	activities     []models.ActivityLog
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		variants: map[uuid.UUID]*models.ProductVariant{},
		products: map[uuid.UUID]*models.Product{},
		orders:   map[uuid.UUID]*models.Order{},
		items:    map[uuid.UUID][]models.OrderItem{},
	}
}

func (s *stubOrderRepo) addVariant(v *models.ProductVariant) *models.ProductVariant {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	s.variants[v.ID] = v
	return v
}

func (s *stubOrderRepo) addOrder(o *models.Order, items ...models.OrderItem) *models.Order {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	s.orders[o.ID] = o
	s.items[o.ID] = items
	return o
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	s.orders[order.ID] = order
	s.items[order.ID] = order.Items
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.FindByID(ctx, id)
}

func (s *stubOrderRepo) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return s.items[orderID], nil
}

func (s *stubOrderRepo) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.orderUpdates = updates
	return nil
}

func (s *stubOrderRepo) LockVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	if v, ok := s.variants[variantID]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) UpdateVariant(ctx context.Context, variantID uuid.UUID, updates map[string]any) error {
	s.variantUpdates = append(s.variantUpdates, variantID)
	return nil
}

func (s *stubOrderRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[productID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	s.activities = append(s.activities, *entry)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCouponValidator struct {
	coupon *models.Coupon
	err    error
}

func (s stubCouponValidator) Validate(ctx context.Context, code string, customerID uuid.UUID, subtotal decimal.Decimal) (*models.Coupon, error) {
	return s.coupon, s.err
}

type stubCouponRepo struct {
	usages       []models.CouponUsage
	incrementIDs []uuid.UUID
}

func (s *stubCouponRepo) WithTx(tx *gorm.DB) coupons.Repository { return s }

func (s *stubCouponRepo) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	return coupon, nil
}

func (s *stubCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCouponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCouponRepo) List(ctx context.Context, params pagination.Params) ([]models.Coupon, int64, error) {
	return nil, 0, nil
}

func (s *stubCouponRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCouponRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubCouponRepo) CountUsageByCustomer(ctx context.Context, couponID, customerID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubCouponRepo) RecordUsage(ctx context.Context, usage *models.CouponUsage) error {
	s.usages = append(s.usages, *usage)
	return nil
}

func (s *stubCouponRepo) IncrementUsedCount(ctx context.Context, id uuid.UUID) error {
	s.incrementIDs = append(s.incrementIDs, id)
	return nil
}

type stubCustomerRepo struct {
	customer     *models.Customer
	orderTotals  []decimal.Decimal
	orderedByIDs []uuid.UUID
}

func (s *stubCustomerRepo) WithTx(tx *gorm.DB) customers.Repository { return s }

func (s *stubCustomerRepo) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	return customer, nil
}

func (s *stubCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if s.customer != nil && s.customer.ID == id {
		return s.customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) List(ctx context.Context, params pagination.Params, filters customers.Filters) ([]models.Customer, int64, error) {
	return nil, 0, nil
}

func (s *stubCustomerRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCustomerRepo) RecordOrder(ctx context.Context, id uuid.UUID, grandTotal decimal.Decimal) error {
	s.orderedByIDs = append(s.orderedByIDs, id)
	s.orderTotals = append(s.orderTotals, grandTotal)
	return nil
}

// stubWarehouselessInvRepo has no default warehouse, so the service skips the
// inventory mirror and only touches the denormalized variant counters.
type stubWarehouselessInvRepo struct{}

func (stubWarehouselessInvRepo) WithTx(tx *gorm.DB) inventory.Repository {
	return stubWarehouselessInvRepo{}
}

func (stubWarehouselessInvRepo) FindWarehouseByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubWarehouselessInvRepo) FindWarehouseByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubWarehouselessInvRepo) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return nil, nil
}

func (stubWarehouselessInvRepo) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	return warehouse, nil
}

func (stubWarehouselessInvRepo) LockRow(ctx context.Context, warehouseID, variantID uuid.UUID) (*models.Inventory, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubWarehouselessInvRepo) CreateRow(ctx context.Context, row *models.Inventory) (*models.Inventory, error) {
	return row, nil
}

func (stubWarehouselessInvRepo) UpdateRow(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (stubWarehouselessInvRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) ([]models.Inventory, int64, error) {
	return nil, 0, nil
}

func (stubWarehouselessInvRepo) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]models.Inventory, error) {
	return nil, nil
}

func (stubWarehouselessInvRepo) SumVariantStock(ctx context.Context, variantID uuid.UUID) (int, error) {
	return 0, nil
}

func (stubWarehouselessInvRepo) SetVariantStock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	return nil
}

func (stubWarehouselessInvRepo) FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubWarehouselessInvRepo) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return nil
}

func (stubWarehouselessInvRepo) ListTransactions(ctx context.Context, filters inventory.TransactionFilters, params pagination.Params) ([]models.InventoryTransaction, int64, error) {
	return nil, 0, nil
}

type stubRefundRecorder struct {
	recorded []uuid.UUID
}

func (s *stubRefundRecorder) RecordRefund(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	s.recorded = append(s.recorded, order.ID)
	return nil
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		TaxRatePercent:        10,
		FlatShippingFee:       "30000",
		FreeShippingThreshold: "500000",
		DefaultWarehouseCode:  "MAIN",
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type testDeps struct {
	repo         *stubOrderRepo
	couponSvc    stubCouponValidator
	couponRepo   *stubCouponRepo
	customerRepo *stubCustomerRepo
	refunds      *stubRefundRecorder
}

func newTestService(t *testing.T, deps testDeps) Service {
	t.Helper()
	if deps.repo == nil {
		deps.repo = newStubOrderRepo()
	}
	if deps.couponRepo == nil {
		deps.couponRepo = &stubCouponRepo{}
	}
	if deps.customerRepo == nil {
		deps.customerRepo = &stubCustomerRepo{customer: &models.Customer{ID: uuid.New()}}
	}

	var refunds RefundRecorder
	if deps.refunds != nil {
		refunds = deps.refunds
	}

	svc, err := NewService(
		deps.repo,
		stubTxRunner{},
		deps.couponSvc,
		deps.couponRepo,
		deps.customerRepo,
		stubWarehouselessInvRepo{},
		refunds,
		testCheckoutConfig(),
		testLogger(),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCreateComputesTotalsWithFlatShipping(t *testing.T) {
	repo := newStubOrderRepo()
	variant := repo.addVariant(&models.ProductVariant{
		ProductID:     uuid.New(),
		SKU:           "GLV-M",
		Name:          "Nitrile Gloves M",
		Price:         dec("100000"),
		StockQuantity: 50,
		IsActive:      true,
	})
	customerRepo := &stubCustomerRepo{customer: &models.Customer{ID: uuid.New()}}

	svc := newTestService(t, testDeps{repo: repo, customerRepo: customerRepo})

	order, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    customerRepo.customer.ID,
		PaymentMethod: enums.PaymentProviderCash,
		ActorID:       uuid.New(),
		Items:         []ItemInput{{VariantID: variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !strings.HasPrefix(order.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order number %s", order.OrderNumber)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("unexpected initial status %s/%s", order.Status, order.PaymentStatus)
	}
	if !order.Subtotal.Equal(dec("200000")) {
		t.Fatalf("expected subtotal 200000 got %s", order.Subtotal)
	}
	// 10% tax on the full subtotal, flat fee under the free-shipping threshold.
	if !order.TaxTotal.Equal(dec("20000")) {
		t.Fatalf("expected tax 20000 got %s", order.TaxTotal)
	}
	if !order.ShippingFee.Equal(dec("30000")) {
		t.Fatalf("expected shipping 30000 got %s", order.ShippingFee)
	}
	if !order.GrandTotal.Equal(dec("250000")) {
		t.Fatalf("expected grand total 250000 got %s", order.GrandTotal)
	}
	if len(order.Items) != 1 || order.Items[0].SKU != "GLV-M" {
		t.Fatalf("unexpected items %+v", order.Items)
	}
	if len(customerRepo.orderTotals) != 1 || !customerRepo.orderTotals[0].Equal(order.GrandTotal) {
		t.Fatal("expected customer lifetime totals updated with grand total")
	}
	// Sold quantity moves the denormalized variant counters.
	if len(repo.variantUpdates) != 1 || repo.variantUpdates[0] != variant.ID {
		t.Fatalf("expected one variant stock update, got %v", repo.variantUpdates)
	}
}

func TestCreateWaivesShippingOverThreshold(t *testing.T) {
	repo := newStubOrderRepo()
	variant := repo.addVariant(&models.ProductVariant{
		ProductID:     uuid.New(),
		SKU:           "MON-BP",
		Name:          "BP Monitor",
		Price:         dec("300000"),
		StockQuantity: 10,
		IsActive:      true,
	})
	customerRepo := &stubCustomerRepo{customer: &models.Customer{ID: uuid.New()}}

	svc := newTestService(t, testDeps{repo: repo, customerRepo: customerRepo})

	order, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    customerRepo.customer.ID,
		PaymentMethod: enums.PaymentProviderVNPay,
		ActorID:       uuid.New(),
		Items:         []ItemInput{{VariantID: variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !order.ShippingFee.IsZero() {
		t.Fatalf("expected free shipping got %s", order.ShippingFee)
	}
	if !order.GrandTotal.Equal(dec("660000")) {
		t.Fatalf("expected grand total 660000 got %s", order.GrandTotal)
	}
}

func TestCreateAppliesCouponBeforeTax(t *testing.T) {
	repo := newStubOrderRepo()
	variant := repo.addVariant(&models.ProductVariant{
		ProductID:     uuid.New(),
		SKU:           "MSK-50",
		Name:          "Surgical Masks 50pk",
		Price:         dec("100000"),
		StockQuantity: 100,
		IsActive:      true,
	})
	customerRepo := &stubCustomerRepo{customer: &models.Customer{ID: uuid.New()}}
	coupon := &models.Coupon{
		ID:       uuid.New(),
		Code:     "SAVE10",
		Type:     enums.CouponTypePercentage,
		Value:    dec("10"),
		IsActive: true,
	}
	couponRepo := &stubCouponRepo{}

	svc := newTestService(t, testDeps{
		repo:         repo,
		couponSvc:    stubCouponValidator{coupon: coupon},
		couponRepo:   couponRepo,
		customerRepo: customerRepo,
	})

	code := "SAVE10"
	order, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    customerRepo.customer.ID,
		PaymentMethod: enums.PaymentProviderCash,
		ActorID:       uuid.New(),
		CouponCode:    &code,
		Items:         []ItemInput{{VariantID: variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !order.DiscountTotal.Equal(dec("20000")) {
		t.Fatalf("expected discount 20000 got %s", order.DiscountTotal)
	}
	// Tax applies to the discounted subtotal: (200000 - 20000) * 10%.
	if !order.TaxTotal.Equal(dec("18000")) {
		t.Fatalf("expected tax 18000 got %s", order.TaxTotal)
	}
	if !order.GrandTotal.Equal(dec("228000")) {
		t.Fatalf("expected grand total 228000 got %s", order.GrandTotal)
	}
	if order.CouponID == nil || *order.CouponID != coupon.ID {
		t.Fatal("expected coupon id on order")
	}
	if len(couponRepo.usages) != 1 || couponRepo.usages[0].OrderID != order.ID {
		t.Fatal("expected coupon usage recorded for order")
	}
	if len(couponRepo.incrementIDs) != 1 || couponRepo.incrementIDs[0] != coupon.ID {
		t.Fatal("expected coupon used count incremented")
	}
}

func TestCreateRejectsInsufficientStock(t *testing.T) {
	repo := newStubOrderRepo()
	variant := repo.addVariant(&models.ProductVariant{
		ProductID:     uuid.New(),
		SKU:           "SYR-5ML",
		Name:          "Syringe 5ml",
		Price:         dec("5000"),
		StockQuantity: 3,
		IsActive:      true,
	})
	customerRepo := &stubCustomerRepo{customer: &models.Customer{ID: uuid.New()}}

	svc := newTestService(t, testDeps{repo: repo, customerRepo: customerRepo})

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    customerRepo.customer.ID,
		PaymentMethod: enums.PaymentProviderCash,
		ActorID:       uuid.New(),
		Items:         []ItemInput{{VariantID: variant.ID, Quantity: 5}},
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStock {
		t.Fatalf("expected stock error got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatal("failed order must not be persisted")
	}
	if len(customerRepo.orderTotals) != 0 {
		t.Fatal("failed order must not touch customer aggregates")
	}
}

func TestCreateRejectsInactiveVariant(t *testing.T) {
	repo := newStubOrderRepo()
	variant := repo.addVariant(&models.ProductVariant{
		ProductID:     uuid.New(),
		SKU:           "OLD-SKU",
		Name:          "Discontinued",
		Price:         dec("1000"),
		StockQuantity: 99,
		IsActive:      false,
	})
	customerRepo := &stubCustomerRepo{customer: &models.Customer{ID: uuid.New()}}

	svc := newTestService(t, testDeps{repo: repo, customerRepo: customerRepo})

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    customerRepo.customer.ID,
		PaymentMethod: enums.PaymentProviderCash,
		ActorID:       uuid.New(),
		Items:         []ItemInput{{VariantID: variant.ID, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected validation error for inactive variant")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.addOrder(&models.Order{
		OrderNumber: "ORD-20260301-AAAA1111",
		CustomerID:  uuid.New(),
		Status:      enums.OrderStatusDelivered,
	})

	svc := newTestService(t, testDeps{repo: repo})

	_, err := svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Next:    enums.OrderStatusProcessing,
		ActorID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected illegal transition rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	if len(repo.activities) != 0 {
		t.Fatal("rejected transition must not log activity")
	}
}

func TestTransitionShippedClearsReservations(t *testing.T) {
	repo := newStubOrderRepo()
	variantID := uuid.New()
	order := repo.addOrder(&models.Order{
		OrderNumber: "ORD-20260301-BBBB2222",
		CustomerID:  uuid.New(),
		Status:      enums.OrderStatusPacked,
	}, models.OrderItem{VariantID: variantID, Quantity: 3})

	svc := newTestService(t, testDeps{repo: repo})

	updated, err := svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Next:    enums.OrderStatusShipped,
		ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if updated.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped got %s", updated.Status)
	}
	if _, ok := repo.orderUpdates["shipped_at"]; !ok {
		t.Fatal("expected shipped_at timestamp set")
	}
	if len(repo.variantUpdates) != 1 || repo.variantUpdates[0] != variantID {
		t.Fatalf("expected reservation release on variant, got %v", repo.variantUpdates)
	}
	if len(repo.activities) != 1 {
		t.Fatalf("expected one activity entry got %d", len(repo.activities))
	}
	entry := repo.activities[0]
	if entry.Action != "status_transition" || entry.FromState == nil || *entry.FromState != "packed" {
		t.Fatalf("unexpected activity entry %+v", entry)
	}
}

func TestTransitionCancelledRestoresStock(t *testing.T) {
	repo := newStubOrderRepo()
	variantID := uuid.New()
	order := repo.addOrder(&models.Order{
		OrderNumber: "ORD-20260301-CCCC3333",
		CustomerID:  uuid.New(),
		Status:      enums.OrderStatusPending,
	}, models.OrderItem{VariantID: variantID, Quantity: 2})

	svc := newTestService(t, testDeps{repo: repo})

	updated, err := svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Next:    enums.OrderStatusCancelled,
		ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if updated.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled got %s", updated.Status)
	}
	if _, ok := repo.orderUpdates["cancelled_at"]; !ok {
		t.Fatal("expected cancelled_at timestamp set")
	}
	if len(repo.variantUpdates) != 1 || repo.variantUpdates[0] != variantID {
		t.Fatalf("expected stock restored on variant, got %v", repo.variantUpdates)
	}
}

func TestTransitionRefundInvokesRecorder(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.addOrder(&models.Order{
		OrderNumber: "ORD-20260301-DDDD4444",
		CustomerID:  uuid.New(),
		Status:      enums.OrderStatusDelivered,
	}, models.OrderItem{VariantID: uuid.New(), Quantity: 1})
	refunds := &stubRefundRecorder{}

	svc := newTestService(t, testDeps{repo: repo, refunds: refunds})

	_, err := svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Next:    enums.OrderStatusRefunded,
		ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if repo.orderUpdates["payment_status"] != enums.PaymentStatusRefunded {
		t.Fatalf("expected payment status refunded, got %v", repo.orderUpdates["payment_status"])
	}
	if len(refunds.recorded) != 1 || refunds.recorded[0] != order.ID {
		t.Fatal("expected refund recorded for order")
	}
}
