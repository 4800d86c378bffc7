package escpos

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acaishop/printing/internal/domain/receipt"
	"github.com/acaishop/printing/internal/domain/shared"
)

// Printer renders receipts and dispatches them to the device. The
// device is acquired per job and released right after, so a busy or
// missing device defers the job instead of failing it outright. Jobs
// whose receipt carries an emblem also defer while the logo asset is
// still loading.
type Printer struct {
	device        Device
	gate          *AssetGate
	renderer      *Renderer
	maxDeferrals  int
	deferralDelay time.Duration
	logger        *zap.Logger
}

// NewPrinter creates a printer over the given device. A nil gate
// disables emblem printing.
func NewPrinter(device Device, gate *AssetGate, maxDeferrals int, deferralDelay time.Duration, logger *zap.Logger) *Printer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Printer{
		device:        device,
		gate:          gate,
		renderer:      NewRenderer(),
		maxDeferrals:  maxDeferrals,
		deferralDelay: deferralDelay,
		logger:        logger,
	}
}

// Print renders the model and writes it to the device. Logo readiness
// and device acquisition are each retried up to the deferral bound;
// once acquired the whole buffer is written in one call and the device
// is released.
func (p *Printer) Print(ctx context.Context, m *receipt.Model) error {
	emblem := p.awaitEmblem(ctx, m)
	data := p.renderer.Render(m, emblem)

	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if err := p.device.Close(); err != nil {
			p.logger.Warn("releasing print device", zap.Error(err))
		}
	}()

	if _, err := p.device.Write(data); err != nil {
		return fmt.Errorf("writing to print device: %w", err)
	}
	return nil
}

// awaitEmblem waits, within the deferral bound, for the logo asset to
// become ready. When the bound runs out the receipt prints without its
// emblem; the emblem is never worth losing the receipt over.
func (p *Printer) awaitEmblem(ctx context.Context, m *receipt.Model) *Raster {
	if p.gate == nil {
		return nil
	}
	header, ok := m.Find(receipt.KindHeader).(receipt.HeaderSection)
	if !ok || header.EmblemURL == "" {
		return nil
	}

	for attempt := 0; attempt <= p.maxDeferrals; attempt++ {
		if raster, ready := p.gate.Poll(); ready {
			return raster
		}
		p.logger.Warn("logo asset not ready, deferring",
			zap.Int("attempt", attempt+1),
			zap.Int("max_deferrals", p.maxDeferrals),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(p.deferralDelay):
		}
	}
	p.logger.Warn("logo asset never became ready, printing without it")
	return nil
}

func (p *Printer) acquire(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt <= p.maxDeferrals; attempt++ {
		if attempt > 0 {
			p.logger.Warn("print device unavailable, deferring",
				zap.Int("attempt", attempt),
				zap.Int("max_deferrals", p.maxDeferrals),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.deferralDelay):
			}
		}
		if err := p.device.Connect(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", shared.ErrPrinterOffline, lastErr)
}
