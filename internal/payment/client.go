package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

// Client talks to the hosted checkout provider's REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new payment provider client
func NewClient(cfg config.PaymentConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SessionLineItem is one line of the checkout manifest. UnitAmount is in
// minor currency units (cents).
type SessionLineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
	ProductID  string `json:"product_id"`
	ImageURL   string `json:"image_url,omitempty"`
}

// CreateSessionRequest is the payload for creating a hosted checkout session
type CreateSessionRequest struct {
	LineItems  []SessionLineItem `json:"line_items"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession is the provider's record of a hosted checkout
type CheckoutSession struct {
	ID          string            `json:"id"`
	URL         string            `json:"url"`
	Status      string            `json:"status"`
	AmountTotal int64             `json:"amount_total"` // minor units
	Currency    string            `json:"currency"`
	LineItems   []SessionLineItem `json:"line_items"`
	Metadata    map[string]string `json:"metadata"`
}

// CreateCheckoutSession creates a hosted checkout session and returns the
// redirect target for the buyer.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CreateSessionRequest) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession retrieves the provider's finalized record of a session. The
// webhook receiver uses this record, not client-submitted data, as the
// source of truth for line items and amounts.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Payment provider request failed", zap.Error(err), zap.String("path", path))
		return &errors.ErrUpstream{Operation: method + " " + path, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.ErrUpstream{Operation: method + " " + path, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode == http.StatusNotFound {
		return &errors.ErrUpstream{
			Operation:          method + " " + path,
			Message:            "session not found",
			ClientAttributable: true,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Payment provider returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
		)
		return &errors.ErrUpstream{
			Operation: method + " " + path,
			Message:   fmt.Sprintf("status %d", resp.StatusCode),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &errors.ErrUpstream{Operation: method + " " + path, Message: "decode response: " + err.Error()}
		}
	}
	return nil
}
