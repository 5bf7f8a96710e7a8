package game

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/poolsim/internal/config"
)

// StartIdleWorker starts a background worker that closes matches which have
// received no intent for IdleMatchTimeoutMin minutes.
func StartIdleWorker(ctx context.Context, gm *Manager, cfg *config.Config) {
	if gm == nil || cfg == nil || cfg.IdleMatchTimeoutMin <= 0 {
		log.Println("[IDLE] Idle timeout disabled; idle worker not started")
		return
	}

	interval := time.Duration(cfg.IdleSweepSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := time.Duration(cfg.IdleMatchTimeoutMin) * time.Minute

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				reapIdle(gm, now, timeout)
			}
		}
	}()
}

// reapIdle closes every session idle for longer than timeout at now and
// returns how many were closed.
func reapIdle(gm *Manager, now time.Time, timeout time.Duration) int {
	closed := 0
	for _, s := range gm.List() {
		idle := now.Sub(s.LastActive())
		if idle < timeout {
			continue
		}
		log.Printf("[IDLE] Closing match %s after %s without input", s.ID(), idle.Round(time.Second))
		if err := gm.Close(s.ID()); err != nil {
			log.Printf("[IDLE] Failed to close match %s: %v", s.ID(), err)
			continue
		}
		closed++
	}
	return closed
}
