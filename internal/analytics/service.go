package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/cache"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
)

const (
	tagAnalytics = "analytics"
	reportTTL    = time.Minute
)

type rawQuerier interface {
	Raw(ctx context.Context, query string, args ...any) *gorm.DB
}

// SalesSummary aggregates order volume over a range.
type SalesSummary struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	OrderCount   int64           `json:"order_count"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageOrder decimal.Decimal `json:"average_order"`
}

// DailyRevenue is one day's bucket of the revenue series.
type DailyRevenue struct {
	Day        time.Time       `json:"day"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopProduct ranks one variant by sold quantity and revenue.
type TopProduct struct {
	VariantID   string          `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	SKU         string          `json:"sku"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// LowStockEntry is one variant at or below its threshold.
type LowStockEntry struct {
	VariantID         string `json:"variant_id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	StockQuantity     int    `json:"stock_quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// Service produces reporting aggregates with a short-TTL cache in front.
type Service interface {
	SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]DailyRevenue, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
	LowStock(ctx context.Context) ([]LowStockEntry, error)
}

type service struct {
	db    rawQuerier
	cache cache.Store
}

// NewService builds the analytics service. Cache may be nil.
func NewService(db rawQuerier, cacheStore cache.Store) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database querier required")
	}
	return &service{db: db, cache: cacheStore}, nil
}

func (s *service) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	key := fmt.Sprintf("analytics:summary:%d:%d", from.Unix(), to.Unix())
	if cached, ok := s.cached(ctx, key); ok {
		var summary SalesSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	var row struct {
		OrderCount int64
		Revenue    decimal.Decimal
	}
	err := s.db.Raw(ctx, `
		SELECT COUNT(*) AS order_count, COALESCE(SUM(grand_total), 0) AS revenue
		FROM orders
		WHERE created_at >= ? AND created_at < ? AND status NOT IN ('cancelled', 'refunded')`,
		from, to,
	).Scan(&row).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sales summary query")
	}

	summary := &SalesSummary{
		From:       from,
		To:         to,
		OrderCount: row.OrderCount,
		Revenue:    row.Revenue,
	}
	if row.OrderCount > 0 {
		summary.AverageOrder = row.Revenue.Div(decimal.NewFromInt(row.OrderCount)).Round(2)
	}

	s.store(ctx, key, summary)
	return summary, nil
}

func (s *service) RevenueByDay(ctx context.Context, from, to time.Time) ([]DailyRevenue, error) {
	key := fmt.Sprintf("analytics:daily:%d:%d", from.Unix(), to.Unix())
	if cached, ok := s.cached(ctx, key); ok {
		var series []DailyRevenue
		if err := json.Unmarshal([]byte(cached), &series); err == nil {
			return series, nil
		}
	}

	var series []DailyRevenue
	err := s.db.Raw(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*) AS order_count,
		       COALESCE(SUM(grand_total), 0) AS revenue
		FROM orders
		WHERE created_at >= ? AND created_at < ? AND status NOT IN ('cancelled', 'refunded')
		GROUP BY 1
		ORDER BY 1 ASC`,
		from, to,
	).Scan(&series).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "daily revenue query")
	}

	s.store(ctx, key, series)
	return series, nil
}

func (s *service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	key := fmt.Sprintf("analytics:top:%d:%d:%d", from.Unix(), to.Unix(), limit)
	if cached, ok := s.cached(ctx, key); ok {
		var rows []TopProduct
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			return rows, nil
		}
	}

	var rows []TopProduct
	err := s.db.Raw(ctx, `
		SELECT oi.variant_id,
		       oi.product_name,
		       oi.variant_name,
		       oi.sku,
		       SUM(oi.quantity) AS quantity,
		       COALESCE(SUM(oi.line_total), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= ? AND o.created_at < ?
		  AND o.status NOT IN ('cancelled', 'refunded')
		GROUP BY oi.variant_id, oi.product_name, oi.variant_name, oi.sku
		ORDER BY quantity DESC
		LIMIT ?`,
		from, to, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products query")
	}

	s.store(ctx, key, rows)
	return rows, nil
}

func (s *service) LowStock(ctx context.Context) ([]LowStockEntry, error) {
	key := "analytics:lowstock"
	if cached, ok := s.cached(ctx, key); ok {
		var rows []LowStockEntry
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			return rows, nil
		}
	}

	var rows []LowStockEntry
	err := s.db.Raw(ctx, `
		SELECT id AS variant_id, sku, name, stock_quantity, low_stock_threshold
		FROM product_variants
		WHERE is_active = true AND stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "low stock query")
	}

	s.store(ctx, key, rows)
	return rows, nil
}

func (s *service) cached(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	return s.cache.Get(ctx, key)
}

func (s *service) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if encoded, err := json.Marshal(value); err == nil {
		s.cache.Set(ctx, key, string(encoded), reportTTL, tagAnalytics)
	}
}
