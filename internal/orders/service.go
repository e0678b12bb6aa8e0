package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/internal/coupons"
	"github.com/vancetran/medisupply-backend/internal/customers"
	"github.com/vancetran/medisupply-backend/internal/inventory"
	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/pagination"
)

const activityEntityOrder = "order"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponValidator interface {
	Validate(ctx context.Context, code string, customerID uuid.UUID, subtotal decimal.Decimal) (*models.Coupon, error)
}

// RefundRecorder writes a refund row when an order moves to refunded. Wired
// from the payments package; may be nil when refund bookkeeping is disabled.
type RefundRecorder interface {
	RecordRefund(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

// Service exposes order creation, lifecycle transitions, and reads.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, int64, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
}

// ItemInput is one requested order line. PriceOverride substitutes the variant
// price (POS price adjustments); Discount is a per-line absolute discount.
type ItemInput struct {
	VariantID     uuid.UUID
	Quantity      int
	PriceOverride *decimal.Decimal
	Discount      *decimal.Decimal
}

// CreateInput carries a new order request.
type CreateInput struct {
	CustomerID      uuid.UUID
	Items           []ItemInput
	PaymentMethod   enums.PaymentProvider
	CouponCode      *string
	ShippingAddress *string
	BillingAddress  *string
	Notes           *string
	ActorID         uuid.UUID
}

// TransitionInput moves an order to its next status.
type TransitionInput struct {
	OrderID uuid.UUID
	Next    enums.OrderStatus
	ActorID uuid.UUID
	Note    *string
}

type service struct {
	repo         Repository
	tx           txRunner
	couponSvc    couponValidator
	couponRepo   coupons.Repository
	customerRepo customers.Repository
	invRepo      inventory.Repository
	refunds      RefundRecorder
	logg         *logger.Logger

	taxRate          decimal.Decimal
	flatShippingFee  decimal.Decimal
	freeShippingFrom decimal.Decimal
	defaultWarehouse string
	now              func() time.Time
}

// NewService builds the order service. The refund recorder may be nil.
func NewService(
	repo Repository,
	tx txRunner,
	couponSvc couponValidator,
	couponRepo coupons.Repository,
	customerRepo customers.Repository,
	invRepo inventory.Repository,
	refunds RefundRecorder,
	checkout config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if couponSvc == nil || couponRepo == nil {
		return nil, fmt.Errorf("coupon dependencies required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if invRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	flatFee, err := decimal.NewFromString(checkout.FlatShippingFee)
	if err != nil {
		return nil, fmt.Errorf("invalid flat shipping fee %q: %w", checkout.FlatShippingFee, err)
	}
	freeFrom, err := decimal.NewFromString(checkout.FreeShippingThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid free shipping threshold %q: %w", checkout.FreeShippingThreshold, err)
	}

	return &service{
		repo:             repo,
		tx:               tx,
		couponSvc:        couponSvc,
		couponRepo:       couponRepo,
		customerRepo:     customerRepo,
		invRepo:          invRepo,
		refunds:          refunds,
		logg:             logg,
		taxRate:          decimal.NewFromInt(int64(checkout.TaxRatePercent)).Div(decimal.NewFromInt(100)),
		flatShippingFee:  flatFee,
		freeShippingFrom: freeFrom,
		defaultWarehouse: checkout.DefaultWarehouseCode,
		now:              time.Now,
	}, nil
}

// Create builds and persists an order in a single transaction: per-line stock
// validation against locked variants, coupon discount capped at subtotal, tax
// on the discounted subtotal, threshold-based shipping, stock/reservation
// updates mirrored into the default warehouse, coupon usage, and customer
// lifetime aggregates. The first failing line aborts the whole order.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	for _, item := range input.Items {
		if item.VariantID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item variant id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invRepo := s.invRepo.WithTx(tx)

		customer, err := s.customerRepo.WithTx(tx).FindByID(ctx, input.CustomerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}

		items, subtotal, err := s.buildItems(ctx, repo, input.Items)
		if err != nil {
			return err
		}

		discount := decimal.Zero
		var coupon *models.Coupon
		if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
			coupon, err = s.couponSvc.Validate(ctx, *input.CouponCode, customer.ID, subtotal)
			if err != nil {
				return err
			}
			discount = coupons.ComputeDiscount(coupon, subtotal)
		}

		taxable := subtotal.Sub(discount)
		tax := taxable.Mul(s.taxRate).Round(2)

		shipping := s.flatShippingFee
		if taxable.GreaterThanOrEqual(s.freeShippingFrom) {
			shipping = decimal.Zero
		}

		grandTotal := taxable.Add(tax).Add(shipping)

		order := &models.Order{
			OrderNumber:     s.generateOrderNumber(),
			CustomerID:      customer.ID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   input.PaymentMethod,
			Subtotal:        subtotal,
			DiscountTotal:   discount,
			TaxTotal:        tax,
			ShippingFee:     shipping,
			GrandTotal:      grandTotal,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			Notes:           input.Notes,
			Items:           items,
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
			order.CouponCode = &coupon.Code
		}

		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, item := range order.Items {
			if err := s.commitStock(ctx, repo, invRepo, order, item); err != nil {
				return err
			}
		}

		if coupon != nil {
			couponRepo := s.couponRepo.WithTx(tx)
			usage := &models.CouponUsage{
				CouponID:   coupon.ID,
				CustomerID: customer.ID,
				OrderID:    order.ID,
			}
			if err := couponRepo.RecordUsage(ctx, usage); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
			}
			if err := couponRepo.IncrementUsedCount(ctx, coupon.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
			}
		}

		if err := s.customerRepo.WithTx(tx).RecordOrder(ctx, customer.ID, grandTotal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record customer order")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, created.ID.String()), "order created")
	return created, nil
}

// buildItems locks each variant, validates it, and snapshots the line. The
// variant price applies unless an override is given.
func (s *service) buildItems(ctx context.Context, repo Repository, inputs []ItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero

	for _, in := range inputs {
		variant, err := repo.LockVariant(ctx, in.VariantID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant not found").
					WithDetails(map[string]any{"variant_id": in.VariantID})
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock variant")
		}
		if !variant.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant is not active").
				WithDetails(map[string]any{"variant_id": variant.ID, "sku": variant.SKU})
		}
		if in.Quantity > variant.StockQuantity {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeStock, "insufficient stock").
				WithDetails(map[string]any{
					"variant_id": variant.ID,
					"sku":        variant.SKU,
					"available":  variant.StockQuantity,
					"requested":  in.Quantity,
				})
		}

		unitPrice := variant.Price
		if in.PriceOverride != nil {
			if in.PriceOverride.LessThan(decimal.Zero) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price override cannot be negative")
			}
			unitPrice = *in.PriceOverride
		}
		lineDiscount := decimal.Zero
		if in.Discount != nil {
			if in.Discount.LessThan(decimal.Zero) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item discount cannot be negative")
			}
			lineDiscount = *in.Discount
		}

		effective := unitPrice.Sub(lineDiscount)
		if effective.LessThan(decimal.Zero) {
			effective = decimal.Zero
		}
		lineTotal := effective.Mul(decimal.NewFromInt(int64(in.Quantity)))

		productName := variant.Name
		if product, err := repo.FindProduct(ctx, variant.ProductID); err == nil {
			productName = product.Name
		}

		items = append(items, models.OrderItem{
			VariantID:   variant.ID,
			ProductName: productName,
			VariantName: variant.Name,
			SKU:         variant.SKU,
			UnitPrice:   unitPrice,
			Discount:    lineDiscount,
			Quantity:    in.Quantity,
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	return items, subtotal, nil
}

// commitStock decrements the variant's denormalized stock, reserves the sold
// quantity, and mirrors the delta into the default warehouse row.
func (s *service) commitStock(ctx context.Context, repo Repository, invRepo inventory.Repository, order *models.Order, item models.OrderItem) error {
	err := repo.UpdateVariant(ctx, item.VariantID, map[string]any{
		"stock_quantity":    gorm.Expr("stock_quantity - ?", item.Quantity),
		"reserved_quantity": gorm.Expr("reserved_quantity + ?", item.Quantity),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant stock")
	}

	warehouse, err := invRepo.FindWarehouseByCode(ctx, s.defaultWarehouse)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			s.logg.Warn(s.logg.WithField(ctx, "warehouse_code", s.defaultWarehouse), "default warehouse missing, skipping inventory mirror")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default warehouse")
	}

	row, err := invRepo.LockRow(ctx, warehouse.ID, item.VariantID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory row")
		}
		row, err = invRepo.CreateRow(ctx, &models.Inventory{
			WarehouseID: warehouse.ID,
			VariantID:   item.VariantID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory row")
		}
	}

	before := row.Quantity
	after := before - item.Quantity
	if after < 0 {
		after = 0
	}
	if err := invRepo.UpdateRow(ctx, row.ID, map[string]any{"quantity": after}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory row")
	}

	reference := order.OrderNumber
	txn := &models.InventoryTransaction{
		WarehouseID:    warehouse.ID,
		VariantID:      item.VariantID,
		UserID:         order.CustomerID,
		Type:           enums.AdjustmentTypeOut,
		Quantity:       item.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reference:      &reference,
	}
	if err := invRepo.AppendTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append inventory transaction")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, int64, error) {
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, total, nil
}

// Transition moves the order through the fixed lifecycle table. Illegal moves
// are rejected before any write. Cancel and refund restore stock and clear
// reservations per line; shipped clears reservations only. Every transition
// appends an activity-log row.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invRepo := s.invRepo.WithTx(tx)

		order, err := repo.LockByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !CanTransition(order.Status, input.Next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed").
				WithDetails(map[string]any{
					"from": order.Status,
					"to":   input.Next,
				})
		}

		items, err := repo.FindItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		now := s.now()
		updates := map[string]any{"status": input.Next}
		switch input.Next {
		case enums.OrderStatusConfirmed:
			updates["confirmed_at"] = now
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
			if err := s.clearReservations(ctx, repo, items); err != nil {
				return err
			}
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
			if err := s.restoreStock(ctx, repo, invRepo, order, items); err != nil {
				return err
			}
		case enums.OrderStatusRefunded:
			updates["payment_status"] = enums.PaymentStatusRefunded
			if err := s.restoreStock(ctx, repo, invRepo, order, items); err != nil {
				return err
			}
			if s.refunds != nil {
				if err := s.refunds.RecordRefund(ctx, tx, order); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
				}
			}
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		fromState := order.Status.String()
		toState := input.Next.String()
		entry := &models.ActivityLog{
			EntityType: activityEntityOrder,
			EntityID:   order.ID,
			Action:     "status_transition",
			ActorID:    input.ActorID,
			FromState:  &fromState,
			ToState:    &toState,
			Note:       input.Note,
		}
		if err := repo.AppendActivity(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append activity log")
		}

		order.Status = input.Next
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, updated.ID.String()), "order transitioned to "+updated.Status.String())
	return updated, nil
}

// clearReservations releases the reserved quantity without touching stock;
// used when the order ships.
func (s *service) clearReservations(ctx context.Context, repo Repository, items []models.OrderItem) error {
	for _, item := range items {
		err := repo.UpdateVariant(ctx, item.VariantID, map[string]any{
			"reserved_quantity": gorm.Expr("GREATEST(reserved_quantity - ?, 0)", item.Quantity),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear reservation")
		}
	}
	return nil
}

// restoreStock puts sold quantities back on the variant and the default
// warehouse, and releases reservations; used for cancel and refund.
func (s *service) restoreStock(ctx context.Context, repo Repository, invRepo inventory.Repository, order *models.Order, items []models.OrderItem) error {
	for _, item := range items {
		err := repo.UpdateVariant(ctx, item.VariantID, map[string]any{
			"stock_quantity":    gorm.Expr("stock_quantity + ?", item.Quantity),
			"reserved_quantity": gorm.Expr("GREATEST(reserved_quantity - ?, 0)", item.Quantity),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore variant stock")
		}

		warehouse, err := invRepo.FindWarehouseByCode(ctx, s.defaultWarehouse)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default warehouse")
		}

		row, err := invRepo.LockRow(ctx, warehouse.ID, item.VariantID)
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory row")
			}
			row, err = invRepo.CreateRow(ctx, &models.Inventory{
				WarehouseID: warehouse.ID,
				VariantID:   item.VariantID,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory row")
			}
		}

		before := row.Quantity
		after := before + item.Quantity
		if err := invRepo.UpdateRow(ctx, row.ID, map[string]any{"quantity": after}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory row")
		}

		reference := order.OrderNumber
		txn := &models.InventoryTransaction{
			WarehouseID:    warehouse.ID,
			VariantID:      item.VariantID,
			UserID:         order.CustomerID,
			Type:           enums.AdjustmentTypeIn,
			Quantity:       item.Quantity,
			QuantityBefore: before,
			QuantityAfter:  after,
			Reference:      &reference,
		}
		if err := invRepo.AppendTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append inventory transaction")
		}
	}
	return nil
}

func (s *service) generateOrderNumber() string {
	stamp := s.now().UTC().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", stamp, suffix)
}
