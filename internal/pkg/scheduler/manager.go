// Package scheduler runs the engine's recurring work: the tenant monitoring
// pass, the weekly reconciliation and the QR expiry sweep.
package scheduler

import (
	"sync"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/internal/pkg/cache"
	"github.com/carryit/rentpay/internal/pkg/monitor"
	"github.com/carryit/rentpay/internal/pkg/qrpay"
	"github.com/carryit/rentpay/internal/pkg/reconcile"
	"github.com/gofiber/fiber/v2/log"
)

// job is one recurring task. inFlight guards against an overrunning run
// being stacked on top of itself: a tick that finds the previous run still
// going is skipped, not queued.
type job struct {
	name     string
	ticker   *time.Ticker
	run      func() error
	inFlight bool
	lockKey  string
	lockTTL  time.Duration
}

// Manager owns the background tickers.
type Manager struct {
	monitorSvc   *monitor.Service
	reconcileSvc *reconcile.Service
	qrSvc        *qrpay.Service

	jobs    []*job
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global scheduler (singleton). The services must be
// installed with Configure before Start.
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{stopCh: make(chan struct{})}
	})
	return globalManager
}

// Configure installs the services the recurring jobs call into.
func (m *Manager) Configure(monitorSvc *monitor.Service, reconcileSvc *reconcile.Service, qrSvc *qrpay.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitorSvc = monitorSvc
	m.reconcileSvc = reconcileSvc
	m.qrSvc = qrSvc
}

// Start launches the background tickers. Calling Start on a running manager
// is a no-op; a stopped manager can be started again.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Scheduler] Starting background tasks")

	settings := models.GetAppSettings()
	m.jobs = []*job{
		{
			name:    "monitoring pass",
			ticker:  time.NewTicker(time.Duration(settings.MonitorIntervalHours) * time.Hour),
			run:     m.runMonitoringPass,
			lockKey: "scheduler:monitoring-pass",
			lockTTL: time.Duration(settings.MonitorIntervalHours) * time.Hour / 2,
		},
		{
			name:    "reconciliation",
			ticker:  time.NewTicker(time.Duration(settings.ReconcileIntervalDays) * 24 * time.Hour),
			run:     m.runReconciliation,
			lockKey: "scheduler:reconciliation",
			lockTTL: 6 * time.Hour,
		},
		{
			name:   "expiry sweep",
			ticker: time.NewTicker(time.Duration(settings.ExpirySweepMinutes) * time.Minute),
			run:    m.runExpirySweep,
		},
	}

	for _, j := range m.jobs {
		m.wg.Add(1)
		go m.worker(j)
	}

	log.Info("[Scheduler] Started successfully")
}

// Stop halts all tickers and waits for any in-flight run to finish.
func (m *Manager) Stop() {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()
		return
	}

	log.Info("[Scheduler] Stopping background tasks...")

	for _, j := range m.jobs {
		j.ticker.Stop()
	}
	close(m.stopCh)
	m.running = false
	m.mu.Unlock()

	m.wg.Wait()
	log.Info("[Scheduler] Stopped successfully")
}

// IsRunning returns whether the manager is currently running.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) worker(j *job) {
	defer m.wg.Done()
	log.Infof("[Scheduler] Started %s worker", j.name)

	for {
		select {
		case <-m.stopCh:
			log.Infof("[Scheduler] %s worker stopping", j.name)
			return
		case <-j.ticker.C:
			m.fire(j)
		}
	}
}

// fire runs one tick of a job, skipping when the previous tick is still in
// flight and, for lock-bearing jobs, when another instance holds the lock.
func (m *Manager) fire(j *job) {
	m.mu.Lock()
	if j.inFlight {
		m.mu.Unlock()
		log.Warnf("[Scheduler] %s still running, skipping this tick", j.name)
		return
	}
	j.inFlight = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		j.inFlight = false
		m.mu.Unlock()
	}()

	if j.lockKey != "" {
		ok, err := cache.AcquireLock(j.lockKey, j.lockTTL)
		if err != nil {
			log.Errorf("[Scheduler] %s lock error: %v", j.name, err)
			return
		}
		if !ok {
			log.Infof("[Scheduler] %s locked by another instance, skipping", j.name)
			return
		}
		defer func() {
			if err := cache.ReleaseLock(j.lockKey); err != nil {
				log.Errorf("[Scheduler] %s lock release error: %v", j.name, err)
			}
		}()
	}

	if err := j.run(); err != nil {
		log.Errorf("[Scheduler] %s error: %v", j.name, err)
	}
}

func (m *Manager) runMonitoringPass() error {
	if m.monitorSvc == nil {
		return nil
	}
	_, err := m.monitorSvc.RunPass()
	return err
}

// runReconciliation runs a monitoring pass first, then reconciles the
// current month across all properties.
func (m *Manager) runReconciliation() error {
	if err := m.runMonitoringPass(); err != nil {
		log.Errorf("[Scheduler] monitoring before reconciliation failed: %v", err)
	}
	if m.reconcileSvc == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := m.reconcileSvc.Reconcile(int(now.Month()), now.Year(), nil)
	return err
}

func (m *Manager) runExpirySweep() error {
	if m.qrSvc == nil {
		return nil
	}
	n, err := m.qrSvc.ExpireStale(time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Infof("[Scheduler] expired %d stale payment requests", n)
	}
	return nil
}

// RunMonitoringPassOnce exposes a manual trigger for a single pass (admin use).
func (m *Manager) RunMonitoringPassOnce() error {
	return m.runMonitoringPass()
}
