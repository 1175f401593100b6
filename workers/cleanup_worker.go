package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"safetrail/interfaces"
)

// CleanupWorker closes sharing sessions that stopped receiving
// updates. A session whose last share is older than the stale cutoff
// is assumed abandoned (app killed, battery dead) and marked inactive.
type CleanupWorker struct {
	sessionStore interfaces.SessionStore
	interval     time.Duration
	staleAfter   time.Duration

	mutex     sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewCleanupWorker(sessionStore interfaces.SessionStore, interval, staleAfter time.Duration) *CleanupWorker {
	return &CleanupWorker{
		sessionStore: sessionStore,
		interval:     interval,
		staleAfter:   staleAfter,
	}
}

func (cw *CleanupWorker) Start(ctx context.Context) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()

	if cw.isRunning {
		return
	}

	cw.ctx, cw.cancel = context.WithCancel(ctx)
	cw.isRunning = true

	cw.wg.Add(1)
	go cw.run()

	logrus.Info("Session cleanup worker started")
}

func (cw *CleanupWorker) Stop() {
	cw.mutex.Lock()
	if !cw.isRunning {
		cw.mutex.Unlock()
		return
	}
	cw.isRunning = false
	cw.cancel()
	cw.mutex.Unlock()

	cw.wg.Wait()
	logrus.Info("Session cleanup worker stopped")
}

func (cw *CleanupWorker) run() {
	defer cw.wg.Done()

	ticker := time.NewTicker(cw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cw.ctx.Done():
			return
		case <-ticker.C:
			cw.closeStaleSessions()
		}
	}
}

func (cw *CleanupWorker) closeStaleSessions() {
	ctx, cancel := context.WithTimeout(cw.ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cw.staleAfter)
	sessions, err := cw.sessionStore.GetStaleSessions(ctx, cutoff)
	if err != nil {
		logrus.Warnf("Cleanup worker failed to list stale sessions: %v", err)
		return
	}

	for i := range sessions {
		session := &sessions[i]
		session.IsActive = false
		session.EndTime = time.Now()

		if err := cw.sessionStore.UpdateSession(ctx, session); err != nil {
			logrus.Warnf("Cleanup worker failed to close session %s: %v", session.ID, err)
			continue
		}
		logrus.Infof("Closed stale sharing session %s", session.ID)
	}
}
