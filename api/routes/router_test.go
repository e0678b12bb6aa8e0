package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/internal/payments"
	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/logger"
)

type stubPaymentsService struct{}

func (stubPaymentsService) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error) {
	return &payments.Intent{}, nil
}

func (stubPaymentsService) HandleVNPayCallback(ctx context.Context, params url.Values) (*payments.CallbackResult, error) {
	return &payments.CallbackResult{}, nil
}

func (stubPaymentsService) HandleMoMoIPN(ctx context.Context, ipn payments.MoMoIPN) (*payments.CallbackResult, error) {
	return &payments.CallbackResult{}, nil
}

func (stubPaymentsService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error) {
	return nil, nil
}

func (stubPaymentsService) RecordRefund(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return nil
}

func testRouter() http.Handler {
	return NewRouter(Deps{
		Config:   &config.Config{},
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Payments: stubPaymentsService{},
	})
}

func TestStatsEndpointIsPublic(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without credentials, got %d", resp.Code)
	}
}

func TestProviderCallbackPathsMounted(t *testing.T) {
	router := testRouter()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"vnpay return", http.MethodGet, "/payment/callback/vnpay", "", http.StatusOK},
		{"vnpay ipn", http.MethodGet, "/payment/ipn/vnpay", "", http.StatusOK},
		{"momo notify", http.MethodPost, "/payment/callback/momo", "{}", http.StatusNoContent},
		{"momo ipn", http.MethodPost, "/payment/ipn/momo", "{}", http.StatusNoContent},
		{"vnpay versioned alias", http.MethodGet, "/api/v1/payments/callback/vnpay", "", http.StatusOK},
		{"momo versioned alias", http.MethodPost, "/api/v1/payments/callback/momo", "{}", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tc.want {
				t.Fatalf("%s %s: expected %d got %d", tc.method, tc.path, tc.want, resp.Code)
			}
		})
	}
}
