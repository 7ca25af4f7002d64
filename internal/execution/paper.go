package execution

import (
	"context"
	"sync"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/pkg/logger"
)

// PaperExecutor logs target weights instead of trading. The last weight per
// symbol stands in for the held quantity so turnover suppression still sees
// which positions are open.
type PaperExecutor struct {
	mu      sync.Mutex
	targets map[string]float64
	logger  *logger.Logger
}

// NewPaperExecutor creates a paper executor
func NewPaperExecutor(log *logger.Logger) *PaperExecutor {
	return &PaperExecutor{
		targets: make(map[string]float64),
		logger:  log.Component("execution.paper"),
	}
}

// Holdings implements contracts.Executor
func (p *PaperExecutor) Holdings(_ context.Context) (contracts.HoldingSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(contracts.HoldingSnapshot, len(p.targets))
	for sym, w := range p.targets {
		out[sym] = w
	}
	return out, nil
}

// SetTargetWeight implements contracts.Executor
func (p *PaperExecutor) SetTargetWeight(_ context.Context, symbol string, weight float64) error {
	p.mu.Lock()
	if weight == 0 {
		delete(p.targets, symbol)
	} else {
		p.targets[symbol] = weight
	}
	p.mu.Unlock()

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"weight": weight,
	}).Info("Paper target weight")
	return nil
}
