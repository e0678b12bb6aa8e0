package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/pkg/config"
)

const (
	vnpVersion    = "2.1.0"
	vnpCommandPay = "pay"
	vnpCurrency   = "VND"
	vnpLocale     = "vn"
	vnpOrderType  = "other"

	vnpParamSecureHash     = "vnp_SecureHash"
	vnpParamSecureHashType = "vnp_SecureHashType"
	vnpResponseCodeOK      = "00"
)

// VNPayGateway builds signed redirect URLs and verifies return/IPN calls for
// the VNPay hosted payment page.
type VNPayGateway struct {
	cfg config.VNPayConfig
	now func() time.Time
}

// NewVNPayGateway constructs the gateway from configuration.
func NewVNPayGateway(cfg config.VNPayConfig) *VNPayGateway {
	return &VNPayGateway{cfg: cfg, now: time.Now}
}

// VNPayRequest carries the order fields that go onto the payment URL.
type VNPayRequest struct {
	RequestID string
	Amount    decimal.Decimal
	OrderInfo string
	ClientIP  string
}

// BuildPaymentURL assembles the redirect URL. The signature is HMAC-SHA512
// over the sorted, URL-encoded query string; VNPay expects the amount
// multiplied by 100.
func (g *VNPayGateway) BuildPaymentURL(req VNPayRequest) (string, error) {
	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", vnpCommandPay)
	params.Set("vnp_TmnCode", g.cfg.TMNCode)
	params.Set("vnp_Amount", req.Amount.Mul(decimal.NewFromInt(100)).StringFixed(0))
	params.Set("vnp_CurrCode", vnpCurrency)
	params.Set("vnp_TxnRef", req.RequestID)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", vnpOrderType)
	params.Set("vnp_Locale", vnpLocale)
	params.Set("vnp_ReturnUrl", g.cfg.ReturnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", g.now().Format("20060102150405"))

	signed := signQuery(params, g.cfg.HashSecret)
	params.Set(vnpParamSecureHash, signed)

	return g.cfg.PayURL + "?" + encodeSorted(params), nil
}

// VerifyCallback recomputes the signature over the callback params (minus the
// hash fields) and compares constant-time. Returns whether the signature is
// valid and whether the provider reported success.
func (g *VNPayGateway) VerifyCallback(params url.Values) (valid bool, paid bool) {
	provided := params.Get(vnpParamSecureHash)
	if provided == "" {
		return false, false
	}

	filtered := url.Values{}
	for key, values := range params {
		if key == vnpParamSecureHash || key == vnpParamSecureHashType {
			continue
		}
		for _, v := range values {
			filtered.Add(key, v)
		}
	}

	expected := signQuery(filtered, g.cfg.HashSecret)
	if !hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected)) {
		return false, false
	}
	return true, params.Get("vnp_ResponseCode") == vnpResponseCodeOK
}

// signQuery produces the lowercase hex HMAC-SHA512 of the sorted encoded
// query string.
func signQuery(params url.Values, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(encodeSorted(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// encodeSorted renders params as key=value pairs sorted by key, matching the
// string VNPay signs on their side.
func encodeSorted(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(key)))
	}
	return b.String()
}
