package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedCallback = errors.New("mpesa: malformed callback payload")

// CallbackEnvelope is the POST body Daraja sends to the registered callback
// URL: Body.stkCallback carrying a result code and, on success, a tagged
// metadata item list.
type CallbackEnvelope struct {
	Body struct {
		StkCallback *STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  *struct {
		Item []MetadataItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

// MetadataItem values arrive as numbers or strings depending on the field;
// json.RawMessage defers the choice to the typed accessors below.
type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

func (c *STKCallback) Success() bool { return c.ResultCode == 0 }

func (c *STKCallback) item(name string) *MetadataItem {
	if c.CallbackMetadata == nil {
		return nil
	}
	for i := range c.CallbackMetadata.Item {
		if c.CallbackMetadata.Item[i].Name == name {
			return &c.CallbackMetadata.Item[i]
		}
	}
	return nil
}

// Amount returns the paid amount, (0, false) when the item is absent.
func (c *STKCallback) Amount() (float64, bool) {
	it := c.item("Amount")
	if it == nil {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(it.Value, &v); err != nil {
		return 0, false
	}
	return v, true
}

// ReceiptNumber returns the MpesaReceiptNumber item, "" when absent.
func (c *STKCallback) ReceiptNumber() string {
	it := c.item("MpesaReceiptNumber")
	if it == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(it.Value, &s); err != nil {
		return ""
	}
	return s
}

// PayerPhone returns the PhoneNumber item as a digit string, "" when absent.
// Daraja sends it as a number.
func (c *STKCallback) PayerPhone() string {
	it := c.item("PhoneNumber")
	if it == nil {
		return ""
	}
	var n json.Number
	if err := json.Unmarshal(it.Value, &n); err == nil {
		return n.String()
	}
	var s string
	if err := json.Unmarshal(it.Value, &s); err == nil {
		return s
	}
	return ""
}

// ParseCallback decodes the envelope and rejects payloads without an
// stkCallback object or correlation id.
func ParseCallback(raw []byte) (*STKCallback, error) {
	var env CallbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCallback, err)
	}
	cb := env.Body.StkCallback
	if cb == nil || cb.CheckoutRequestID == "" {
		return nil, ErrMalformedCallback
	}
	return cb, nil
}
