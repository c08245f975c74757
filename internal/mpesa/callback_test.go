package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallback = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 50.00},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254712345678}
				]
			}
		}
	}
}`

func TestParseCallback_Success(t *testing.T) {
	t.Parallel()

	cb, err := ParseCallback([]byte(successCallback))
	require.NoError(t, err)

	assert.True(t, cb.Success())
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)

	amount, ok := cb.Amount()
	require.True(t, ok)
	assert.Equal(t, 50.0, amount)
	assert.Equal(t, "NLJ7RT61SV", cb.ReceiptNumber())
	assert.Equal(t, "254712345678", cb.PayerPhone())
}

func TestParseCallback_Failure(t *testing.T) {
	t.Parallel()

	raw := `{
		"Body": {
			"stkCallback": {
				"CheckoutRequestID": "ws_CO_1",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`

	cb, err := ParseCallback([]byte(raw))
	require.NoError(t, err)

	assert.False(t, cb.Success())
	assert.Equal(t, "Request cancelled by user", cb.ResultDesc)

	// optional metadata is absent on failures; accessors must not panic
	_, ok := cb.Amount()
	assert.False(t, ok)
	assert.Equal(t, "", cb.ReceiptNumber())
	assert.Equal(t, "", cb.PayerPhone())
}

func TestParseCallback_MissingOptionalItems(t *testing.T) {
	t.Parallel()

	raw := `{
		"Body": {
			"stkCallback": {
				"CheckoutRequestID": "ws_CO_2",
				"ResultCode": 0,
				"ResultDesc": "ok",
				"CallbackMetadata": {"Item": [{"Name": "Amount", "Value": 150}]}
			}
		}
	}`

	cb, err := ParseCallback([]byte(raw))
	require.NoError(t, err)

	amount, ok := cb.Amount()
	require.True(t, ok)
	assert.Equal(t, 150.0, amount)
	// receipt and phone missing: tolerated on the happy path
	assert.Equal(t, "", cb.ReceiptNumber())
	assert.Equal(t, "", cb.PayerPhone())
}

func TestParseCallback_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{not json`,
		`{}`,
		`{"Body": {}}`,
		`{"Body": {"stkCallback": {"ResultCode": 0}}}`, // no correlation id
	} {
		_, err := ParseCallback([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedCallback, "payload %q", raw)
	}
}
