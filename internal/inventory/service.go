package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes warehouse stock operations.
type Service interface {
	CreateWarehouse(ctx context.Context, input WarehouseInput) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.Inventory, error)
	Transfer(ctx context.Context, input TransferInput) error
	ListStock(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) ([]models.Inventory, int64, error)
	ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.InventoryTransaction, int64, error)
}

// WarehouseInput carries a new warehouse.
type WarehouseInput struct {
	Code    string
	Name    string
	Address *string
}

// AdjustInput carries one stock movement. Quantity is additive for in/out and
// the absolute target for adjustment.
type AdjustInput struct {
	WarehouseID uuid.UUID
	VariantID   uuid.UUID
	Type        enums.AdjustmentType
	Quantity    int
	UserID      uuid.UUID
	Reference   *string
	Note        *string
}

// TransferInput moves stock between two warehouses atomically.
type TransferInput struct {
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	VariantID       uuid.UUID
	Quantity        int
	UserID          uuid.UUID
	Note            *string
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the inventory service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) CreateWarehouse(ctx context.Context, input WarehouseInput) (*models.Warehouse, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse code required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse name required")
	}

	warehouse := &models.Warehouse{
		Code:     code,
		Name:     strings.TrimSpace(input.Name),
		Address:  input.Address,
		IsActive: true,
	}
	created, err := s.repo.CreateWarehouse(ctx, warehouse)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create warehouse")
	}
	return created, nil
}

func (s *service) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	rows, err := s.repo.ListWarehouses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	return rows, nil
}

// Adjust applies one movement inside a transaction: the inventory row is
// locked FOR UPDATE (created lazily at zero), "out" fails closed when the
// requested quantity exceeds on-hand, and the variant's denormalized stock is
// recomputed as the sum across warehouses before the movement is logged.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.Inventory, error) {
	if err := validateAdjust(input); err != nil {
		return nil, err
	}

	var result *models.Inventory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := s.applyMovement(ctx, repo, input)
		if err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer books an out movement at the source and an in movement at the
// destination inside a single transaction, so a failing leg rolls back both.
func (s *service) Transfer(ctx context.Context, input TransferInput) error {
	if input.FromWarehouseID == uuid.Nil || input.ToWarehouseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "both warehouses required")
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return pkgerrors.New(pkgerrors.CodeValidation, "source and destination must differ")
	}
	if input.VariantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	reference := fmt.Sprintf("transfer:%s->%s", input.FromWarehouseID, input.ToWarehouseID)

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		out := AdjustInput{
			WarehouseID: input.FromWarehouseID,
			VariantID:   input.VariantID,
			Type:        enums.AdjustmentTypeOut,
			Quantity:    input.Quantity,
			UserID:      input.UserID,
			Reference:   &reference,
			Note:        input.Note,
		}
		if _, err := s.applyMovement(ctx, repo, out); err != nil {
			return err
		}

		in := AdjustInput{
			WarehouseID: input.ToWarehouseID,
			VariantID:   input.VariantID,
			Type:        enums.AdjustmentTypeIn,
			Quantity:    input.Quantity,
			UserID:      input.UserID,
			Reference:   &reference,
			Note:        input.Note,
		}
		if _, err := s.applyMovement(ctx, repo, in); err != nil {
			return err
		}
		return nil
	})
}

func (s *service) ListStock(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) ([]models.Inventory, int64, error) {
	if warehouseID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	rows, total, err := s.repo.ListByWarehouse(ctx, warehouseID, params)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock")
	}
	return rows, total, nil
}

func (s *service) ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.InventoryTransaction, int64, error) {
	rows, total, err := s.repo.ListTransactions(ctx, filters, params)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return rows, total, nil
}

// applyMovement mutates one inventory row plus its variant total. Callers own
// the transaction; repo must already be bound to it.
func (s *service) applyMovement(ctx context.Context, repo Repository, input AdjustInput) (*models.Inventory, error) {
	row, err := repo.LockRow(ctx, input.WarehouseID, input.VariantID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory row")
		}
		row, err = repo.CreateRow(ctx, &models.Inventory{
			WarehouseID: input.WarehouseID,
			VariantID:   input.VariantID,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory row")
		}
	}

	before := row.Quantity
	var after int
	switch input.Type {
	case enums.AdjustmentTypeIn:
		after = before + input.Quantity
	case enums.AdjustmentTypeOut:
		if input.Quantity > before {
			return nil, pkgerrors.New(pkgerrors.CodeStock, "insufficient stock in warehouse").
				WithDetails(map[string]any{
					"variant_id": input.VariantID,
					"available":  before,
					"requested":  input.Quantity,
				})
		}
		after = before - input.Quantity
	case enums.AdjustmentTypeAdjustment:
		after = input.Quantity
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported adjustment type")
	}

	if err := repo.UpdateRow(ctx, row.ID, map[string]any{"quantity": after}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory row")
	}
	row.Quantity = after

	total, err := repo.SumVariantStock(ctx, input.VariantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum variant stock")
	}
	if err := repo.SetVariantStock(ctx, input.VariantID, total); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set variant stock")
	}

	txn := &models.InventoryTransaction{
		WarehouseID:    input.WarehouseID,
		VariantID:      input.VariantID,
		UserID:         input.UserID,
		Type:           input.Type,
		Quantity:       input.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reference:      input.Reference,
		Note:           input.Note,
	}
	if err := repo.AppendTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append inventory transaction")
	}

	s.checkLowStock(ctx, repo, input.VariantID, total)
	return row, nil
}

// checkLowStock is a log-only hook; it never fails the movement.
func (s *service) checkLowStock(ctx context.Context, repo Repository, variantID uuid.UUID, total int) {
	variant, err := repo.FindVariant(ctx, variantID)
	if err != nil {
		return
	}
	if total <= variant.LowStockThreshold {
		fields := s.logg.WithFields(ctx, map[string]any{
			"variant_id": variantID.String(),
			"sku":        variant.SKU,
			"stock":      total,
			"threshold":  variant.LowStockThreshold,
		})
		s.logg.Warn(fields, "variant stock at or below threshold")
	}
}

func validateAdjust(input AdjustInput) error {
	if input.WarehouseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if input.VariantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if !input.Type.IsValid() || input.Type == enums.AdjustmentTypeTransfer {
		return pkgerrors.New(pkgerrors.CodeValidation, "type must be in, out, or adjustment")
	}
	if input.Type == enums.AdjustmentTypeAdjustment {
		if input.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment quantity cannot be negative")
		}
		return nil
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
