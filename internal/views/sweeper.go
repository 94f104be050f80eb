package views

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweepable is a registry the sweeper can clean.
type Sweepable interface {
	Name() string
	Sweep(now time.Time, idle time.Duration) int
}

// Sweeper closes idle views on a cron schedule.
type Sweeper struct {
	c      *cron.Cron
	idle   time.Duration
	regs   []Sweepable
	logger *zap.Logger
	now    func() time.Time
}

// NewSweeper schedules a sweep of regs with the standard 5-field spec.
func NewSweeper(spec string, idle time.Duration, logger *zap.Logger, regs ...Sweepable) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{c: cron.New(), idle: idle, regs: regs, logger: logger, now: time.Now}
	if _, err := s.c.AddFunc(spec, func() { s.Run() }); err != nil {
		return nil, err
	}
	return s, nil
}

// Run sweeps every registry once and returns the number of closed views.
func (s *Sweeper) Run() int {
	total := 0
	now := s.now()
	for _, reg := range s.regs {
		n := reg.Sweep(now, s.idle)
		if n > 0 {
			s.logger.Info("swept idle views", zap.String("registry", reg.Name()), zap.Int("count", n))
		}
		total += n
	}
	return total
}

// Start starts the schedule.
func (s *Sweeper) Start() {
	s.logger.Info("starting view sweeper", zap.Duration("idle", s.idle))
	s.c.Start()
}

// Stop stops the schedule and waits for a running sweep.
func (s *Sweeper) Stop() {
	<-s.c.Stop().Done()
}
