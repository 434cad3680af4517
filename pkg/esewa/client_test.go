package esewa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sulavkarki/medpasal-backend/pkg/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.EsewaConfig{
		ProductCode: "EPAYTEST",
		SecretKey:   "8gBm/:&EnhH.1/q",
		FormURL:     "https://rc-epay.esewa.com.np/api/epay/main/v2/form",
		SuccessURL:  "https://medpasal.example/payments/esewa/return",
		FailureURL:  "https://medpasal.example/payments/esewa/failure",
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresSecret(t *testing.T) {
	_, err := NewClient(context.Background(), config.EsewaConfig{ProductCode: "EPAYTEST"}, nil)
	require.ErrorIs(t, err, errSecretRequired)
}

func TestBuildPaymentForm(t *testing.T) {
	client := newTestClient(t)

	form, err := client.BuildPaymentForm(110000)
	require.NoError(t, err)
	require.NotEmpty(t, form.TransactionUUID)
	require.Equal(t, "1100.00", form.Fields["total_amount"])
	require.Equal(t, "EPAYTEST", form.Fields["product_code"])
	require.Equal(t, "total_amount,transaction_uuid,product_code", form.Fields["signed_field_names"])
	require.True(t, client.VerifySignature(form.Fields["total_amount"], form.TransactionUUID, form.Fields["signature"]))
}

func TestBuildPaymentFormRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t)

	_, err := client.BuildPaymentForm(0)
	require.Error(t, err)
}

func TestVerifySignatureRejectsTamperedAmount(t *testing.T) {
	client := newTestClient(t)

	form, err := client.BuildPaymentForm(50000)
	require.NoError(t, err)
	require.False(t, client.VerifySignature("9999.00", form.TransactionUUID, form.Fields["signature"]))
}
