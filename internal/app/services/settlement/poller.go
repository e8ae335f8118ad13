package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/services/numbers"
	"github.com/drawworks/lotto/internal/app/system"
	"github.com/drawworks/lotto/pkg/logger"
)

// DefaultCronSpec runs the settlement tick hourly.
const DefaultCronSpec = "@hourly"

const tickTimeout = 30 * time.Second

var _ system.Service = (*Poller)(nil)

// Poller drives settlement on a recurring cron schedule. Each tick
// pre-generates the winning numbers for the upcoming draw and settles the
// most recent elapsed one. Both operations are idempotent, so overlapping or
// repeated ticks are harmless.
type Poller struct {
	service  *Service
	numbers  *numbers.Service
	clock    draw.Clock
	schedule draw.Schedule
	spec     string
	log      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewPoller creates a lifecycle-managed settlement poller.
func NewPoller(service *Service, numberSvc *numbers.Service, clock draw.Clock, schedule draw.Schedule, spec string, log *logger.Logger) *Poller {
	if clock == nil {
		clock = draw.SystemClock{}
	}
	if spec == "" {
		spec = DefaultCronSpec
	}
	if log == nil {
		log = logger.NewDefault("settlement-poller")
	}
	return &Poller{
		service:  service,
		numbers:  numberSvc,
		clock:    clock,
		schedule: schedule,
		spec:     spec,
		log:      log,
	}
}

func (p *Poller) Name() string { return "settlement-poller" }

func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	runner := cron.New()
	if _, err := runner.AddFunc(p.spec, func() { p.Tick(ctx) }); err != nil {
		return err
	}
	runner.Start()

	p.cron = runner
	p.running = true
	p.log.Infof("settlement poller started (schedule %q)", p.spec)
	return nil
}

func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	runner := p.cron
	p.cron = nil
	p.running = false
	p.mu.Unlock()

	select {
	case <-runner.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	p.log.Info("settlement poller stopped")
	return nil
}

// Tick performs one scheduler pass. Failures are logged and retried on the
// next tick; they never escape the poller.
func (p *Poller) Tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	now := p.clock.Now()

	upcoming := p.schedule.Next(now)
	if _, err := p.numbers.Generate(ctx, upcoming); err != nil {
		p.log.WithError(err).
			WithField("draw_date", upcoming.Format(time.RFC3339)).
			Warn("pre-generating winning numbers failed")
	}

	elapsed := p.schedule.Previous(now)
	if _, err := p.service.RunFor(ctx, elapsed); err != nil {
		p.log.WithError(err).
			WithField("draw_date", elapsed.Format(time.RFC3339)).
			Warn("settlement run failed; will retry next tick")
	}
}
