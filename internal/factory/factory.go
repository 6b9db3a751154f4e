// Package factory is the gateway to the external order-fulfillment service.
// Exactly one synchronous attempt is made per order; there are no retries.
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

// Result is the factory's acknowledgement: an opaque token minted by the
// factory (not our issuer) and a diagnostics link.
type Result struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
}

// Error is a fulfillment failure. ReportURL is carried through to the error
// response when the factory provided one.
type Error struct {
	Message   string
	ReportURL string
}

func (e *Error) Error() string {
	return e.Message
}

// Fulfiller realizes a persisted order at the factory.
type Fulfiller interface {
	Fulfill(ctx context.Context, diner types.User, order types.Order) (Result, error)
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

var _ Fulfiller = (*Client)(nil)

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type fulfillRequest struct {
	Diner dinerRef    `json:"diner"`
	Order types.Order `json:"order"`
}

type dinerRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Client) Fulfill(ctx context.Context, diner types.User, order types.Order) (Result, error) {
	body, err := json.Marshal(fulfillRequest{
		Diner: dinerRef{ID: diner.ID, Name: diner.Name, Email: diner.Email},
		Order: order,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode fulfillment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build fulfillment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Result{}, &Error{Message: "Failed to fulfill order at factory"}
	}
	defer resp.Body.Close()

	var r Result
	// a decode failure on a 2xx response still fails the request below;
	// on an error response the body is best-effort diagnostics
	_ = json.NewDecoder(resp.Body).Decode(&r)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &Error{Message: "Failed to fulfill order at factory", ReportURL: r.ReportURL}
	}
	return r, nil
}
