package payments

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCallbackData(t *testing.T) {
	// {"status":"COMPLETE","transaction_code":"ABC123"}
	raw := "eyJzdGF0dXMiOiJDT01QTEVURSIsInRyYW5zYWN0aW9uX2NvZGUiOiJBQkMxMjMifQ=="

	decoded, err := DecodeCallbackData(raw)
	require.NoError(t, err)
	require.Equal(t, "COMPLETE", decoded.Status)
	require.Equal(t, "ABC123", decoded.TransactionCode)
}

func TestDecodeCallbackDataHandlesURLAlphabetAndMissingPadding(t *testing.T) {
	stripped := "eyJzdGF0dXMiOiJDT01QTEVURSIsInRyYW5zYWN0aW9uX2NvZGUiOiJBQkMxMjMifQ"

	decoded, err := DecodeCallbackData(stripped)
	require.NoError(t, err)
	require.Equal(t, "ABC123", decoded.TransactionCode)

	escaped := url.QueryEscape("eyJzdGF0dXMiOiJDT01QTEVURSIsInRyYW5zYWN0aW9uX2NvZGUiOiJBQkMxMjMifQ==")
	decoded, err = DecodeCallbackData(escaped)
	require.NoError(t, err)
	require.Equal(t, "COMPLETE", decoded.Status)
}

func TestDecodeCallbackDataEmpty(t *testing.T) {
	decoded, err := DecodeCallbackData("")
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeCallbackDataMalformed(t *testing.T) {
	_, err := DecodeCallbackData("not-base64!!!")
	require.Error(t, err)
}

func TestResolveTransactionRefPrecedence(t *testing.T) {
	params := url.Values{"oid": {"RAW-REF"}}

	ref := ResolveTransactionRef(&CallbackData{TransactionCode: "CODE-1", TransactionUUID: "UUID-1"}, params)
	require.Equal(t, "CODE-1", ref)

	ref = ResolveTransactionRef(&CallbackData{TransactionUUID: "UUID-1", Oid: "OID-1"}, params)
	require.Equal(t, "UUID-1", ref)

	ref = ResolveTransactionRef(&CallbackData{Oid: "OID-1", RefID: "REF-1"}, params)
	require.Equal(t, "OID-1", ref)

	ref = ResolveTransactionRef(&CallbackData{RefID: "REF-1"}, params)
	require.Equal(t, "REF-1", ref)

	ref = ResolveTransactionRef(nil, params)
	require.Equal(t, "RAW-REF", ref)

	require.Empty(t, ResolveTransactionRef(nil, url.Values{}))
}

func TestResolveTransactionRefDecodedOidPayload(t *testing.T) {
	// {"status":"COMPLETE","oid":"OID-77"}
	raw := "eyJzdGF0dXMiOiJDT01QTEVURSIsIm9pZCI6Ik9JRC03NyJ9"

	decoded, err := DecodeCallbackData(raw)
	require.NoError(t, err)
	require.Equal(t, "OID-77", decoded.Oid)

	ref := ResolveTransactionRef(decoded, url.Values{})
	require.Equal(t, "OID-77", ref)
	require.True(t, IsSuccessful(decoded, ref))
}

func TestIsSuccessful(t *testing.T) {
	require.True(t, IsSuccessful(&CallbackData{Status: "COMPLETE"}, ""))
	require.True(t, IsSuccessful(&CallbackData{Status: "success"}, ""))
	require.False(t, IsSuccessful(&CallbackData{Status: "PENDING"}, "REF"))
	require.True(t, IsSuccessful(nil, "REF"))
	require.True(t, IsSuccessful(&CallbackData{}, ""))
	require.False(t, IsSuccessful(nil, ""))
}
