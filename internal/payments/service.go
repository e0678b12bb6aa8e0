package payments

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type vnpayGateway interface {
	BuildPaymentURL(req VNPayRequest) (string, error)
	VerifyCallback(params url.Values) (valid bool, paid bool)
}

type momoGateway interface {
	CreatePayment(ctx context.Context, req MoMoRequest) (string, error)
	VerifyIPN(ipn MoMoIPN) (valid bool, paid bool)
}

// Intent is the client-facing result of a create-payment call.
type Intent struct {
	RequestID  string                `json:"request_id"`
	Provider   enums.PaymentProvider `json:"provider"`
	PaymentURL string                `json:"payment_url,omitempty"`
	Status     enums.PaymentStatus   `json:"status"`
}

// CallbackResult summarizes a verified provider callback.
type CallbackResult struct {
	RequestID string              `json:"request_id"`
	OrderID   uuid.UUID           `json:"order_id"`
	Status    enums.PaymentStatus `json:"status"`
}

// CreateIntentInput carries a payment request against an existing order.
type CreateIntentInput struct {
	OrderID  uuid.UUID
	Provider enums.PaymentProvider
	ClientIP string
}

// Service dispatches payment intents across providers and settles callbacks.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error)
	HandleVNPayCallback(ctx context.Context, params url.Values) (*CallbackResult, error)
	HandleMoMoIPN(ctx context.Context, ipn MoMoIPN) (*CallbackResult, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error)
	RecordRefund(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type service struct {
	repo  Repository
	tx    txRunner
	vnpay vnpayGateway
	momo  momoGateway
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds the payment service.
func NewService(repo Repository, tx txRunner, vnpay vnpayGateway, momo momoGateway, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if vnpay == nil || momo == nil {
		return nil, fmt.Errorf("payment gateways required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:  repo,
		tx:    tx,
		vnpay: vnpay,
		momo:  momo,
		logg:  logg,
		now:   time.Now,
	}, nil
}

// CreateIntent persists a pending PaymentTransaction and dispatches to the
// requested provider. Cash orders settle at the counter and never reach here.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	switch input.Provider {
	case enums.PaymentProviderVNPay, enums.PaymentProviderMoMo, enums.PaymentProviderCard:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment provider")
	}

	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	requestID := uuid.NewString()
	txn := &models.PaymentTransaction{
		OrderID:   order.ID,
		Provider:  input.Provider,
		RequestID: requestID,
		Amount:    order.GrandTotal,
		Currency:  "VND",
		Status:    enums.PaymentStatusPending,
	}
	if _, err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment transaction")
	}

	orderInfo := "Payment for order " + order.OrderNumber

	switch input.Provider {
	case enums.PaymentProviderVNPay:
		payURL, err := s.vnpay.BuildPaymentURL(VNPayRequest{
			RequestID: requestID,
			Amount:    order.GrandTotal,
			OrderInfo: orderInfo,
			ClientIP:  input.ClientIP,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build vnpay url")
		}
		return &Intent{RequestID: requestID, Provider: input.Provider, PaymentURL: payURL, Status: enums.PaymentStatusPending}, nil

	case enums.PaymentProviderMoMo:
		payURL, err := s.momo.CreatePayment(ctx, MoMoRequest{
			RequestID: requestID,
			OrderID:   order.OrderNumber,
			Amount:    order.GrandTotal,
			OrderInfo: orderInfo,
		})
		if err != nil {
			reason := err.Error()
			_ = s.repo.UpdateTransaction(ctx, txn.ID, map[string]any{
				"status":      enums.PaymentStatusFailed,
				"fail_reason": reason,
			})
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create momo payment")
		}
		return &Intent{RequestID: requestID, Provider: input.Provider, PaymentURL: payURL, Status: enums.PaymentStatusPending}, nil

	default: // card, simulated gateway
		if err := s.settle(ctx, txn, true, "SIMULATED"); err != nil {
			return nil, err
		}
		return &Intent{RequestID: requestID, Provider: input.Provider, Status: enums.PaymentStatusPaid}, nil
	}
}

// HandleVNPayCallback verifies the return/IPN signature and settles the
// matching transaction. A signature mismatch is terminal.
func (s *service) HandleVNPayCallback(ctx context.Context, params url.Values) (*CallbackResult, error) {
	valid, paid := s.vnpay.VerifyCallback(params)
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeSignature, "vnpay signature mismatch")
	}

	requestID := params.Get("vnp_TxnRef")
	txn, err := s.repo.FindTransactionByRequestID(ctx, requestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}

	providerRef := params.Get("vnp_TransactionNo")
	if err := s.settle(ctx, txn, paid, providerRef); err != nil {
		return nil, err
	}

	status := enums.PaymentStatusPaid
	if !paid {
		status = enums.PaymentStatusFailed
	}
	return &CallbackResult{RequestID: requestID, OrderID: txn.OrderID, Status: status}, nil
}

// HandleMoMoIPN verifies the IPN signature and settles the matching
// transaction.
func (s *service) HandleMoMoIPN(ctx context.Context, ipn MoMoIPN) (*CallbackResult, error) {
	valid, paid := s.momo.VerifyIPN(ipn)
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeSignature, "momo signature mismatch")
	}

	txn, err := s.repo.FindTransactionByRequestID(ctx, ipn.RequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}

	providerRef := fmt.Sprintf("%d", ipn.TransID)
	if err := s.settle(ctx, txn, paid, providerRef); err != nil {
		return nil, err
	}

	status := enums.PaymentStatusPaid
	if !paid {
		status = enums.PaymentStatusFailed
	}
	return &CallbackResult{RequestID: ipn.RequestID, OrderID: txn.OrderID, Status: status}, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rows, err := s.repo.ListTransactionsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment transactions")
	}
	return rows, nil
}

// RecordRefund writes the refund row inside the caller's transaction; invoked
// by the order service on the refunded transition.
func (s *service) RecordRefund(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	repo := s.repo.WithTx(tx)

	refund := &models.Refund{
		OrderID: order.ID,
		Amount:  order.GrandTotal,
		Status:  enums.PaymentStatusRefunded,
	}

	// Attach the paid transaction when one exists.
	txns, err := repo.ListTransactionsByOrder(ctx, order.ID)
	if err == nil {
		for i := range txns {
			if txns[i].Status == enums.PaymentStatusPaid {
				refund.PaymentTransactionID = &txns[i].ID
				if err := repo.UpdateTransaction(ctx, txns[i].ID, map[string]any{
					"status": enums.PaymentStatusRefunded,
				}); err != nil {
					return err
				}
				break
			}
		}
	}

	if _, err := repo.CreateRefund(ctx, refund); err != nil {
		return err
	}
	return nil
}

// settle updates the transaction and mirrors the outcome onto the order's
// payment status in one transaction.
func (s *service) settle(ctx context.Context, txn *models.PaymentTransaction, paid bool, providerRef string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		status := enums.PaymentStatusFailed
		updates := map[string]any{"provider_ref": providerRef}
		if paid {
			status = enums.PaymentStatusPaid
			updates["paid_at"] = s.now()
		} else {
			updates["fail_reason"] = "provider reported failure"
		}
		updates["status"] = status

		if err := repo.UpdateTransaction(ctx, txn.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment transaction")
		}
		if err := repo.UpdateOrderPaymentStatus(ctx, txn.OrderID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order payment status")
		}
		return nil
	})
}
