// Package mpesa wraps the Safaricom Daraja API: OAuth credential fetch,
// STK push initiation and the result-callback envelope.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/cache"
)

var ErrAuthFailed = errors.New("mpesa: failed to obtain access token")

const tokenCacheKey = "mpesa:access_token"

// Tokens live ~1h; refresh a bit early so in-flight requests never carry a
// token about to expire.
const tokenSafetyMargin = 5 * time.Minute

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	Environment    string // sandbox | production
}

func (c Config) baseURL() string {
	if c.Environment == "production" {
		return "https://api.safaricom.co.ke"
	}
	return "https://sandbox.safaricom.co.ke"
}

type Client struct {
	cfg    Config
	tokens cache.TokenCache
	client *http.Client
	now    func() time.Time
}

func NewClient(cfg Config, tokens cache.TokenCache) *Client {
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"` // seconds as a string, Daraja quirk
}

// accessToken returns a cached token or fetches a fresh one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if tok, err := c.tokens.Get(ctx, tokenCacheKey); err == nil && tok != "" {
		return tok, nil
	}

	url := c.cfg.baseURL() + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.AccessToken == "" {
		return "", ErrAuthFailed
	}

	ttl := time.Hour
	if secs, err := time.ParseDuration(tr.ExpiresIn + "s"); err == nil && secs > tokenSafetyMargin {
		ttl = secs - tokenSafetyMargin
	}
	_ = c.tokens.Set(ctx, tokenCacheKey, tr.AccessToken, ttl)

	return tr.AccessToken, nil
}

type stkRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
}

// InitiateSTKPush asks the provider to prompt the phone for payment. The
// returned CheckoutRequestID is the correlation id the result callback will
// carry; the real outcome arrives asynchronously.
func (c *Client) InitiateSTKPush(ctx context.Context, phoneCanonical string, amount int64, reference, description, callbackURL string) (*STKResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := c.now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + ts))

	reqBody, err := json.Marshal(stkRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          password,
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phoneCanonical,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phoneCanonical,
		CallBackURL:       callbackURL,
		AccountReference:  reference,
		TransactionDesc:   description,
	})
	if err != nil {
		return nil, err
	}

	url := c.cfg.baseURL() + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stk push: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stk push: status %d body=%q", resp.StatusCode, string(body))
	}

	var sr STKResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("stk push: decode: %w body=%q", err, string(body))
	}
	if sr.CheckoutRequestID == "" {
		return nil, fmt.Errorf("stk push: missing CheckoutRequestID body=%q", string(body))
	}
	return &sr, nil
}
