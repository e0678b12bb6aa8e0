package payments

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/pkg/config"
)

func testVNPayGateway() *VNPayGateway {
	g := NewVNPayGateway(config.VNPayConfig{
		TMNCode:    "TESTCODE",
		HashSecret: "supersecret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://shop.example.com/payment/return",
	})
	g.now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) }
	return g
}

func TestBuildPaymentURLSignsAndScalesAmount(t *testing.T) {
	g := testVNPayGateway()

	raw, err := g.BuildPaymentURL(VNPayRequest{
		RequestID: "req-123",
		Amount:    decimal.NewFromInt(150000),
		OrderInfo: "Order ORD-20260301-ABCDEF12",
		ClientIP:  "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("BuildPaymentURL: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	query := parsed.Query()

	if got := query.Get("vnp_Amount"); got != "15000000" {
		t.Fatalf("expected amount x100, got %s", got)
	}
	if got := query.Get("vnp_TxnRef"); got != "req-123" {
		t.Fatalf("unexpected txn ref %s", got)
	}
	if query.Get("vnp_SecureHash") == "" {
		t.Fatal("expected secure hash on url")
	}
	if !strings.HasPrefix(raw, "https://sandbox.vnpayment.vn/") {
		t.Fatalf("unexpected base url %s", raw)
	}
}

func TestVerifyCallbackRoundTrip(t *testing.T) {
	g := testVNPayGateway()

	params := url.Values{}
	params.Set("vnp_TxnRef", "req-123")
	params.Set("vnp_Amount", "15000000")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_TransactionNo", "998877")
	params.Set("vnp_SecureHash", signQuery(params, "supersecret"))

	valid, paid := g.VerifyCallback(params)
	if !valid {
		t.Fatal("expected valid signature")
	}
	if !paid {
		t.Fatal("expected paid result for response code 00")
	}
}

func TestVerifyCallbackFailedPayment(t *testing.T) {
	g := testVNPayGateway()

	params := url.Values{}
	params.Set("vnp_TxnRef", "req-123")
	params.Set("vnp_ResponseCode", "24")
	params.Set("vnp_SecureHash", signQuery(params, "supersecret"))

	valid, paid := g.VerifyCallback(params)
	if !valid {
		t.Fatal("expected valid signature")
	}
	if paid {
		t.Fatal("expected unpaid result for non-zero response code")
	}
}

func TestVerifyCallbackRejectsTamperedParams(t *testing.T) {
	g := testVNPayGateway()

	params := url.Values{}
	params.Set("vnp_TxnRef", "req-123")
	params.Set("vnp_Amount", "15000000")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_SecureHash", signQuery(params, "supersecret"))

	// Amount changed after signing.
	params.Set("vnp_Amount", "1")

	valid, _ := g.VerifyCallback(params)
	if valid {
		t.Fatal("expected signature mismatch for tampered amount")
	}
}

func TestVerifyCallbackRejectsMissingHash(t *testing.T) {
	g := testVNPayGateway()

	params := url.Values{}
	params.Set("vnp_TxnRef", "req-123")

	valid, _ := g.VerifyCallback(params)
	if valid {
		t.Fatal("expected invalid result without secure hash")
	}
}
