package execution

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/pkg/httputil"
	"github.com/wonny/inout/backend/pkg/logger"
)

// HoldingsResponse is the wire form of GET {base}/holdings
type HoldingsResponse struct {
	Holdings map[string]float64 `json:"holdings"`
}

// TargetRequest is the body of POST {base}/targets
type TargetRequest struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// HTTPBroker forwards (symbol, weight) pairs to a brokerage gateway. Order
// type, sizing and timing stay on the gateway side.
type HTTPBroker struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// NewHTTPBroker creates a broker client
func NewHTTPBroker(client *httputil.Client, baseURL string, log *logger.Logger) *HTTPBroker {
	return &HTTPBroker{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.Component("execution.http"),
	}
}

// Holdings implements contracts.Executor
func (b *HTTPBroker) Holdings(ctx context.Context) (contracts.HoldingSnapshot, error) {
	var body HoldingsResponse
	if err := b.client.GetJSON(ctx, b.baseURL+"/holdings", &body); err != nil {
		return nil, fmt.Errorf("%w: holdings: %w", contracts.ErrUpstreamDataUnavailable, err)
	}

	out := make(contracts.HoldingSnapshot, len(body.Holdings))
	for sym, q := range body.Holdings {
		out[strings.ToUpper(sym)] = q
	}
	return out, nil
}

// SetTargetWeight implements contracts.Executor
func (b *HTTPBroker) SetTargetWeight(ctx context.Context, symbol string, weight float64) error {
	resp, err := b.client.PostJSON(ctx, b.baseURL+"/targets", TargetRequest{Symbol: symbol, Weight: weight})
	if err != nil {
		return fmt.Errorf("set target %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("set target %s: status %d: %s", symbol, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	b.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"weight": weight,
	}).Info("Target weight sent")
	return nil
}
