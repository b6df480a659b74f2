package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/todo/repository"
)

const probeTimeout = 3 * time.Second

// Monitor periodically pings the storage backend so readiness checks can be
// answered without touching the database on the request path.
type Monitor struct {
	store  repository.Pinger
	driver string

	status Status
	mu     sync.RWMutex
	cron   *cron.Cron
	logger *zap.Logger
}

// New creates a monitor probing store every interval (minimum one second).
func New(store repository.Pinger, driver string, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		store:  store,
		driver: driver,
		cron:   cron.New(),
		logger: logger,
	}
	m.cron.Schedule(cron.Every(interval), cron.FuncJob(m.refresh))
	return m
}

// Start runs one probe synchronously and then schedules the rest.
func (m *Monitor) Start() {
	m.refresh()
	m.cron.Start()
}

// Stop halts the scheduler and waits for a running probe or ctx, whichever ends first.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) refresh() {
	online := m.checkStorage()
	status := Status{
		Driver:    m.driver,
		Storage:   online,
		LastCheck: time.Now().UTC(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Storage != online {
		if online {
			m.logger.Info("storage reachable again", zap.String("driver", m.driver))
		} else {
			m.logger.Warn("storage became unreachable", zap.String("driver", m.driver))
		}
	}
}

func (m *Monitor) checkStorage() bool {
	if m.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := m.store.Ping(ctx); err != nil {
		m.logger.Warn("storage ping failed", zap.String("driver", m.driver), zap.Error(err))
		return false
	}
	return true
}
