package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/pkg/config"
)

const momoRequestType = "captureWallet"

// MoMoGateway signs and posts payment requests to the MoMo gateway and
// verifies IPN payloads.
type MoMoGateway struct {
	cfg    config.MoMoConfig
	client *http.Client
}

// NewMoMoGateway constructs the gateway from configuration.
func NewMoMoGateway(cfg config.MoMoConfig) *MoMoGateway {
	return &MoMoGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// MoMoRequest carries the order fields for a create-payment call.
type MoMoRequest struct {
	RequestID string
	OrderID   string
	Amount    decimal.Decimal
	OrderInfo string
}

type momoCreatePayload struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// MoMoIPN is the notification body MoMo posts after payment.
type MoMoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// CreatePayment signs the payload with HMAC-SHA256 and posts it to the
// gateway, returning the hosted payment URL.
func (g *MoMoGateway) CreatePayment(ctx context.Context, req MoMoRequest) (string, error) {
	amount := req.Amount.StringFixed(0)
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		g.cfg.AccessKey, amount, "", g.cfg.NotifyURL, req.OrderID, req.OrderInfo,
		g.cfg.PartnerCode, g.cfg.ReturnURL, req.RequestID, momoRequestType,
	)

	payload := momoCreatePayload{
		PartnerCode: g.cfg.PartnerCode,
		AccessKey:   g.cfg.AccessKey,
		RequestID:   req.RequestID,
		Amount:      amount,
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: g.cfg.ReturnURL,
		IPNURL:      g.cfg.NotifyURL,
		ExtraData:   "",
		RequestType: momoRequestType,
		Signature:   g.sign(raw),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal momo payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build momo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call momo gateway: %w", err)
	}
	defer resp.Body.Close()

	var decoded momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode momo response: %w", err)
	}
	if decoded.ResultCode != 0 {
		return "", fmt.Errorf("momo rejected payment: %s (code %d)", decoded.Message, decoded.ResultCode)
	}
	return decoded.PayURL, nil
}

// VerifyIPN recomputes the notification signature and compares constant-time.
// Returns whether the signature is valid and whether the payment succeeded.
func (g *MoMoGateway) VerifyIPN(ipn MoMoIPN) (valid bool, paid bool) {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		g.cfg.AccessKey, ipn.Amount, ipn.ExtraData, ipn.Message, ipn.OrderID, ipn.OrderInfo,
		ipn.OrderType, ipn.PartnerCode, ipn.PayType, ipn.RequestID, ipn.ResponseTime,
		ipn.ResultCode, ipn.TransID,
	)
	expected := g.sign(raw)
	if !hmac.Equal([]byte(expected), []byte(ipn.Signature)) {
		return false, false
	}
	return true, ipn.ResultCode == 0
}

func (g *MoMoGateway) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
