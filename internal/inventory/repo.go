package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/pagination"
)

// Repository defines persistence operations for warehouse stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindWarehouseByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	FindWarehouseByCode(ctx context.Context, code string) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error)
	LockRow(ctx context.Context, warehouseID, variantID uuid.UUID) (*models.Inventory, error)
	CreateRow(ctx context.Context, row *models.Inventory) (*models.Inventory, error)
	UpdateRow(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) ([]models.Inventory, int64, error)
	ListByVariant(ctx context.Context, variantID uuid.UUID) ([]models.Inventory, error)
	SumVariantStock(ctx context.Context, variantID uuid.UUID) (int, error)
	SetVariantStock(ctx context.Context, variantID uuid.UUID, quantity int) error
	FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
	AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.InventoryTransaction, int64, error)
}

// TransactionFilters narrows movement history listings.
type TransactionFilters struct {
	WarehouseID *uuid.UUID
	VariantID   *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindWarehouseByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) FindWarehouseByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var rows []models.Warehouse
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if err := r.db.WithContext(ctx).Create(warehouse).Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

// LockRow loads the (warehouse, variant) inventory row FOR UPDATE. Callers must
// hold a transaction; returns gorm.ErrRecordNotFound when the row is absent.
func (r *repository) LockRow(ctx context.Context, warehouseID, variantID uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND variant_id = ?", warehouseID, variantID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateRow(ctx context.Context, row *models.Inventory) (*models.Inventory, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) UpdateRow(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, params pagination.Params) ([]models.Inventory, int64, error) {
	normalized := pagination.Normalize(params)

	query := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("warehouse_id = ?", warehouseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Inventory
	err := query.
		Order("updated_at DESC").
		Limit(normalized.Limit).
		Offset(normalized.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]models.Inventory, error) {
	var rows []models.Inventory
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SumVariantStock(ctx context.Context, variantID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("variant_id = ?", variantID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) SetVariantStock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", quantity).Error
}

func (r *repository) FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.InventoryTransaction, int64, error) {
	normalized := pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.InventoryTransaction{})
	if filters.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filters.WarehouseID)
	}
	if filters.VariantID != nil {
		query = query.Where("variant_id = ?", *filters.VariantID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryTransaction
	err := query.
		Order("created_at DESC").
		Limit(normalized.Limit).
		Offset(normalized.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
