package esewa

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sulavkarki/medpasal-backend/pkg/config"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
)

// StatusComplete is the vocabulary eSewa uses for a settled transaction.
const StatusComplete = "COMPLETE"

var (
	errSecretRequired      = errors.New("esewa secret key is required")
	errProductCodeRequired = errors.New("esewa product code is required")
)

// Client mints transaction identifiers and signed form fields for the
// redirect-based checkout flow. The gateway itself is external; this client
// only prepares what the browser posts to it.
type Client struct {
	productCode string
	secretKey   string
	formURL     string
	successURL  string
	failureURL  string
}

// PaymentForm is the signed payload the frontend posts to the gateway.
type PaymentForm struct {
	FormURL         string            `json:"form_url"`
	TransactionUUID string            `json:"transaction_uuid"`
	Fields          map[string]string `json:"fields"`
}

// NewClient validates the gateway configuration once at boot.
func NewClient(ctx context.Context, cfg config.EsewaConfig, logg *logger.Logger) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretRequired
	}
	productCode := strings.TrimSpace(cfg.ProductCode)
	if productCode == "" {
		return nil, errProductCodeRequired
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("esewa client initialized (%s)", productCode))
	}

	return &Client{
		productCode: productCode,
		secretKey:   secret,
		formURL:     cfg.FormURL,
		successURL:  cfg.SuccessURL,
		failureURL:  cfg.FailureURL,
	}, nil
}

// BuildPaymentForm signs the form fields for the given amount in paisa.
// The gateway expects rupee amounts, so paisa is converted with two decimal
// places of precision.
func (c *Client) BuildPaymentForm(totalPaisa int) (*PaymentForm, error) {
	if c == nil {
		return nil, errors.New("esewa client not initialized")
	}
	if totalPaisa <= 0 {
		return nil, fmt.Errorf("total amount must be positive, got %d", totalPaisa)
	}

	total := decimal.NewFromInt(int64(totalPaisa)).Div(decimal.NewFromInt(100)).StringFixed(2)
	transactionUUID := uuid.NewString()

	fields := map[string]string{
		"amount":                  total,
		"tax_amount":              "0",
		"total_amount":            total,
		"transaction_uuid":        transactionUUID,
		"product_code":            c.productCode,
		"product_service_charge":  "0",
		"product_delivery_charge": "0",
		"success_url":             c.successURL,
		"failure_url":             c.failureURL,
		"signed_field_names":      "total_amount,transaction_uuid,product_code",
	}
	fields["signature"] = c.Sign(fields["total_amount"], transactionUUID)

	return &PaymentForm{
		FormURL:         c.formURL,
		TransactionUUID: transactionUUID,
		Fields:          fields,
	}, nil
}

// Sign produces the base64 HMAC-SHA256 signature over the signed field set.
func (c *Client) Sign(totalAmount, transactionUUID string) string {
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", totalAmount, transactionUUID, c.productCode)
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a callback signature in constant time.
func (c *Client) VerifySignature(totalAmount, transactionUUID, signature string) bool {
	expected := c.Sign(totalAmount, transactionUUID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
