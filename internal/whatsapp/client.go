// Package whatsapp is the messaging gateway: an outbound text-send client
// for the WhatsApp Cloud API and the inbound webhook envelope types.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/phone"
)

var ErrSendFailed = errors.New("whatsapp: send failed")

// Sender is what the rest of the system depends on; *Client implements it.
type Sender interface {
	Send(ctx context.Context, toCanonical, body string) error
}

type Client struct {
	apiBase       string
	accessToken   string
	phoneNumberID string
	client        *http.Client
}

func NewClient(apiBase, accessToken, phoneNumberID string) *Client {
	return &Client{
		apiBase:       apiBase,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type textPayload struct {
	Body string `json:"body"`
}

type sendRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textPayload `json:"text"`
}

// Send delivers one text message. toCanonical is the digits-only 254... form;
// the + prefix is added here, at the channel boundary.
func (c *Client) Send(ctx context.Context, toCanonical, body string) error {
	reqBody, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               phone.Display(toCanonical),
		Type:             "text",
		Text:             textPayload{Body: body},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.apiBase, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d body=%q", ErrSendFailed, resp.StatusCode, string(respBody))
	}
	return nil
}
