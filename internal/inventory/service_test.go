package inventory

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/pagination"
)

type rowKey struct {
	warehouse uuid.UUID
	variant   uuid.UUID
}

type stubInventoryRepo struct {
	rows         map[rowKey]*models.Inventory
	variants     map[uuid.UUID]*models.ProductVariant
	variantStock map[uuid.UUID]int
	transactions []models.InventoryTransaction
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{
		rows:         map[rowKey]*models.Inventory{},
		variants:     map[uuid.UUID]*models.ProductVariant{},
		variantStock: map[uuid.UUID]int{},
	}
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInventoryRepo) FindWarehouseByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	return &models.Warehouse{ID: id}, nil
}

func (s *stubInventoryRepo) FindWarehouseByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubInventoryRepo) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return nil, nil
}

func (s *stubInventoryRepo) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	return warehouse, nil
}

func (s *stubInventoryRepo) LockRow(ctx context.Context, warehouseID, variantID uuid.UUID) (*models.Inventory, error) {
	if row, ok := s.rows[rowKey{warehouseID, variantID}]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubInventoryRepo) CreateRow(ctx context.Context, row *models.Inventory) (*models.Inventory, error) {
	row.ID = uuid.New()
	s.rows[rowKey{row.WarehouseID, row.VariantID}] = row
	return row, nil
}

func (s *stubInventoryRepo) UpdateRow(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	for _, row := range s.rows {
		if row.ID == id {
			if qty, ok := updates["quantity"].(int); ok {
				row.Quantity = qty
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubInventoryRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) ([]models.Inventory, int64, error) {
	return nil, 0, nil
}

func (s *stubInventoryRepo) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]models.Inventory, error) {
	return nil, nil
}

func (s *stubInventoryRepo) SumVariantStock(ctx context.Context, variantID uuid.UUID) (int, error) {
	total := 0
	for _, row := range s.rows {
		if row.VariantID == variantID {
			total += row.Quantity
		}
	}
	return total, nil
}

func (s *stubInventoryRepo) SetVariantStock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	s.variantStock[variantID] = quantity
	return nil
}

func (s *stubInventoryRepo) FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	if v, ok := s.variants[variantID]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubInventoryRepo) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	s.transactions = append(s.transactions, *txn)
	return nil
}

func (s *stubInventoryRepo) ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.InventoryTransaction, int64, error) {
	return s.transactions, int64(len(s.transactions)), nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func seedRow(repo *stubInventoryRepo, warehouseID, variantID uuid.UUID, qty int) {
	repo.rows[rowKey{warehouseID, variantID}] = &models.Inventory{
		ID:          uuid.New(),
		WarehouseID: warehouseID,
		VariantID:   variantID,
		Quantity:    qty,
	}
}

func TestAdjustInIncreasesStock(t *testing.T) {
	repo := newStubInventoryRepo()
	warehouseID, variantID := uuid.New(), uuid.New()
	seedRow(repo, warehouseID, variantID, 10)

	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	row, err := svc.Adjust(context.Background(), AdjustInput{
		WarehouseID: warehouseID,
		VariantID:   variantID,
		Type:        enums.AdjustmentTypeIn,
		Quantity:    5,
		UserID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if row.Quantity != 15 {
		t.Fatalf("expected 15 got %d", row.Quantity)
	}
	if repo.variantStock[variantID] != 15 {
		t.Fatalf("expected variant total 15 got %d", repo.variantStock[variantID])
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected one transaction got %d", len(repo.transactions))
	}
	if repo.transactions[0].QuantityBefore != 10 || repo.transactions[0].QuantityAfter != 15 {
		t.Fatalf("unexpected before/after %d/%d", repo.transactions[0].QuantityBefore, repo.transactions[0].QuantityAfter)
	}
}

func TestAdjustOutFailsClosedOnInsufficientStock(t *testing.T) {
	repo := newStubInventoryRepo()
	warehouseID, variantID := uuid.New(), uuid.New()
	seedRow(repo, warehouseID, variantID, 3)

	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Adjust(context.Background(), AdjustInput{
		WarehouseID: warehouseID,
		VariantID:   variantID,
		Type:        enums.AdjustmentTypeOut,
		Quantity:    5,
		UserID:      uuid.New(),
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStock {
		t.Fatalf("expected stock error got %v", err)
	}
	if len(repo.transactions) != 0 {
		t.Fatal("failed movement must not be logged")
	}
	if repo.rows[rowKey{warehouseID, variantID}].Quantity != 3 {
		t.Fatal("failed movement must not change stock")
	}
}

func TestAdjustAbsoluteSetsQuantity(t *testing.T) {
	repo := newStubInventoryRepo()
	warehouseID, variantID := uuid.New(), uuid.New()
	seedRow(repo, warehouseID, variantID, 8)

	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	row, err := svc.Adjust(context.Background(), AdjustInput{
		WarehouseID: warehouseID,
		VariantID:   variantID,
		Type:        enums.AdjustmentTypeAdjustment,
		Quantity:    20,
		UserID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if row.Quantity != 20 {
		t.Fatalf("expected 20 got %d", row.Quantity)
	}
}

func TestAdjustRejectsTransferType(t *testing.T) {
	repo := newStubInventoryRepo()
	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Adjust(context.Background(), AdjustInput{
		WarehouseID: uuid.New(),
		VariantID:   uuid.New(),
		Type:        enums.AdjustmentTypeTransfer,
		Quantity:    1,
		UserID:      uuid.New(),
	})
	if err == nil {
		t.Fatal("expected validation error for direct transfer type")
	}
}

func TestTransferMovesStockBetweenWarehouses(t *testing.T) {
	repo := newStubInventoryRepo()
	from, to, variantID := uuid.New(), uuid.New(), uuid.New()
	seedRow(repo, from, variantID, 10)

	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.Transfer(context.Background(), TransferInput{
		FromWarehouseID: from,
		ToWarehouseID:   to,
		VariantID:       variantID,
		Quantity:        4,
		UserID:          uuid.New(),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if got := repo.rows[rowKey{from, variantID}].Quantity; got != 6 {
		t.Fatalf("expected source 6 got %d", got)
	}
	if got := repo.rows[rowKey{to, variantID}].Quantity; got != 4 {
		t.Fatalf("expected destination 4 got %d", got)
	}
	// Totals across warehouses are unchanged by a transfer.
	if repo.variantStock[variantID] != 10 {
		t.Fatalf("expected variant total 10 got %d", repo.variantStock[variantID])
	}
	if len(repo.transactions) != 2 {
		t.Fatalf("expected two movement records got %d", len(repo.transactions))
	}
}

func TestTransferRejectsSameWarehouse(t *testing.T) {
	repo := newStubInventoryRepo()
	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	id := uuid.New()
	err = svc.Transfer(context.Background(), TransferInput{
		FromWarehouseID: id,
		ToWarehouseID:   id,
		VariantID:       uuid.New(),
		Quantity:        1,
		UserID:          uuid.New(),
	})
	if err == nil {
		t.Fatal("expected validation error for same-warehouse transfer")
	}
}

func TestTransferFailsWhenSourceShort(t *testing.T) {
	repo := newStubInventoryRepo()
	from, to, variantID := uuid.New(), uuid.New(), uuid.New()
	seedRow(repo, from, variantID, 2)

	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.Transfer(context.Background(), TransferInput{
		FromWarehouseID: from,
		ToWarehouseID:   to,
		VariantID:       variantID,
		Quantity:        5,
		UserID:          uuid.New(),
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStock {
		t.Fatalf("expected stock error got %v", err)
	}
}
