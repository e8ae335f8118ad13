// Package app wires the lottery services together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	announcersvc "github.com/drawworks/lotto/internal/app/services/announcer"
	intakesvc "github.com/drawworks/lotto/internal/app/services/intake"
	numberssvc "github.com/drawworks/lotto/internal/app/services/numbers"
	settlementsvc "github.com/drawworks/lotto/internal/app/services/settlement"
	"github.com/drawworks/lotto/internal/app/storage"
	"github.com/drawworks/lotto/internal/app/storage/memory"
	"github.com/drawworks/lotto/internal/app/system"
	"github.com/drawworks/lotto/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Tickets        storage.TicketStore
	WinningNumbers storage.WinningNumberStore
	Verdicts       storage.VerdictStore
	Announcements  storage.AnnouncementStore
}

// Options carries non-store wiring knobs. Zero values select sane defaults:
// the system clock, the Saturday 12:00 UTC schedule, and an hourly
// settlement tick.
type Options struct {
	Clock          draw.Clock
	Schedule       draw.Schedule
	Source         numberssvc.Source
	FetchCount     int
	SettlementCron string
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Clock    draw.Clock
	Schedule draw.Schedule

	Intake     *intakesvc.Service
	Numbers    *numberssvc.Service
	Settlement *settlementsvc.Service
	Announcer  *announcersvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Tickets == nil {
		stores.Tickets = mem
	}
	if stores.WinningNumbers == nil {
		stores.WinningNumbers = mem
	}
	if stores.Verdicts == nil {
		stores.Verdicts = mem
	}
	if stores.Announcements == nil {
		stores.Announcements = mem
	}

	if opts.Clock == nil {
		opts.Clock = draw.SystemClock{}
	}
	if (opts.Schedule == draw.Schedule{}) {
		opts.Schedule = draw.DefaultSchedule()
	}
	if opts.Source == nil {
		log.Warn("number source not configured; winning number generation will fail until one is attached")
	}

	numbersSvc := numberssvc.New(stores.WinningNumbers, opts.Source, opts.FetchCount, log)
	intakeSvc := intakesvc.New(stores.Tickets, opts.Clock, opts.Schedule, log)
	settlementSvc := settlementsvc.New(numbersSvc, stores.Tickets, stores.Verdicts, log)
	announcerSvc := announcersvc.New(stores.Tickets, stores.Verdicts, stores.Announcements, opts.Clock, log)

	manager := system.NewManager()
	poller := settlementsvc.NewPoller(settlementSvc, numbersSvc, opts.Clock, opts.Schedule, opts.SettlementCron, log)
	if err := manager.Register(poller); err != nil {
		return nil, fmt.Errorf("register %s: %w", poller.Name(), err)
	}

	return &Application{
		manager:    manager,
		log:        log,
		Clock:      opts.Clock,
		Schedule:   opts.Schedule,
		Intake:     intakeSvc,
		Numbers:    numbersSvc,
		Settlement: settlementSvc,
		Announcer:  announcerSvc,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before
// Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
