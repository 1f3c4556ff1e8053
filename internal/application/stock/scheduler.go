package stock

import (
	"context"
	"sync"
	"time"

	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

// Scheduler dispara el barrido de expiraciones a intervalo fijo en una
// goroutine propia. Para despliegues con cron externo existe cmd/sweep;
// este scheduler in-process cubre el caso por defecto.
type Scheduler struct {
	sweeper  *ExpirySweeper
	interval time.Duration
	log      *logger.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler construye el scheduler. interval <= 0 usa 1 hora.
func NewScheduler(sweeper *ExpirySweeper, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start lanza la goroutine del barrido. Corre una pasada inmediata al arrancar.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.interval)
	s.wg.Add(1)
	go s.run()
	s.log.Info().Dur("interval", s.interval).Msg("scheduler de barrido iniciado")
}

// Stop detiene el scheduler y espera a que termine la pasada en curso.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.log.Info().Msg("scheduler de barrido detenido")
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	s.sweeper.RunExpirySweep(context.Background())
	for {
		select {
		case <-s.ticker.C:
			s.sweeper.RunExpirySweep(context.Background())
		case <-s.stop:
			return
		}
	}
}
