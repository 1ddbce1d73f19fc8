package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/antonminaichev/foodorder/internal/types/payment"
)

const Provider = "razorpay"

// Gateway opens orders with the payment processor.
type Gateway interface {
	CreateOrder(ctx context.Context, req payment.GatewayOrderRequest) (*payment.GatewayOrder, error)
}

// HTTPGateway talks to a Razorpay-compatible orders API.
type HTTPGateway struct {
	Client    *http.Client
	Address   string
	KeyID     string
	KeySecret string
}

func NewHTTPGateway(address, keyID, keySecret string) *HTTPGateway {
	return &HTTPGateway{
		Client:    &http.Client{Timeout: 10 * time.Second},
		Address:   address,
		KeyID:     keyID,
		KeySecret: keySecret,
	}
}

func (g *HTTPGateway) CreateOrder(ctx context.Context, in payment.GatewayOrderRequest) (*payment.GatewayOrder, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	url := fmt.Sprintf("%s/v1/orders", g.Address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.KeyID, g.KeySecret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("too many requests (429) for receipt %s", in.Receipt)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out payment.GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("gateway returned an order without id")
	}
	return &out, nil
}
