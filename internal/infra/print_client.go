package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Product is one line of a receipt sent to the printer.
type Product struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

type PrintClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPrintClient(baseURL string, timeout time.Duration) *PrintClient {
	return &PrintClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *PrintClient) NewOrder(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	body, err := json.Marshal(map[string]any{"products": products})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/new-order", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("print api returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
