// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/pennmush/internal/dbref"
)

// Default rate limiting values for socket input.
const (
	// DefaultBurstCapacity is the number of lines a player can type in a
	// burst before rate limiting kicks in.
	DefaultBurstCapacity = 10

	// DefaultSustainedRate is the number of lines per second allowed as
	// sustained rate (token refill rate).
	DefaultSustainedRate = 2.0

	// MinBurstCapacity ensures burst capacity is at least 1.
	MinBurstCapacity = 1

	// MinSustainedRate ensures sustained rate is at least 0.1 tokens/second.
	MinSustainedRate = 0.1

	// DefaultCleanupInterval is the interval at which the background goroutine
	// forgets idle players.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultIdleMaxAge is how long a player may be idle before its bucket
	// is dropped.
	DefaultIdleMaxAge = time.Hour
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// BurstCapacity defaults to DefaultBurstCapacity if zero or negative.
	BurstCapacity int

	// SustainedRate defaults to DefaultSustainedRate if zero or negative.
	SustainedRate float64

	// CleanupInterval defaults to DefaultCleanupInterval if zero.
	CleanupInterval time.Duration

	// IdleMaxAge defaults to DefaultIdleMaxAge if zero.
	IdleMaxAge time.Duration
}

// bucket tracks rate limiting state for one player using the token bucket
// algorithm.
type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter limits how fast players can send input from their sockets.
// Queued and softcode commands are never limited. It is safe for
// concurrent use.
//
// The RateLimiter runs a background goroutine to periodically forget idle
// players. Call Close() to stop the goroutine and release resources.
type RateLimiter struct {
	mu            sync.Mutex
	players       map[dbref.Ref]*bucket
	burstCapacity int
	sustainedRate float64
	idleMaxAge    time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup

	playerGauge prometheus.Gauge
}

// NewRateLimiter creates a new rate limiter with the given configuration.
// It starts a background goroutine for cleanup. Call Close() to stop it.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return newRateLimiter(cfg, nil)
}

// NewRateLimiterWithRegistry creates a new rate limiter and registers a
// tracked player gauge with the provided Prometheus registry.
func NewRateLimiterWithRegistry(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	return newRateLimiter(cfg, reg)
}

func newRateLimiter(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	burstCapacity := cfg.BurstCapacity
	if burstCapacity <= 0 {
		burstCapacity = DefaultBurstCapacity
	}
	burstCapacity = max(burstCapacity, MinBurstCapacity)

	sustainedRate := cfg.SustainedRate
	if sustainedRate <= 0 {
		sustainedRate = DefaultSustainedRate
	}
	sustainedRate = max(sustainedRate, MinSustainedRate)

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	idleMaxAge := cfg.IdleMaxAge
	if idleMaxAge <= 0 {
		idleMaxAge = DefaultIdleMaxAge
	}

	rl := &RateLimiter{
		players:       make(map[dbref.Ref]*bucket),
		burstCapacity: burstCapacity,
		sustainedRate: sustainedRate,
		idleMaxAge:    idleMaxAge,
		stopChan:      make(chan struct{}),
	}

	if reg != nil {
		rl.playerGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pennmush_ratelimiter_players",
			Help: "Current number of players tracked by the input rate limiter",
		})
		reg.MustRegister(rl.playerGauge)
	}

	rl.wg.Add(1)
	go rl.cleanupLoop(cleanupInterval)

	return rl
}

// Allow checks if a line of input from player may be dispatched.
// Returns (allowed, cooldownMs) where cooldownMs is the number of
// milliseconds until the next token is available (0 if allowed).
func (rl *RateLimiter) Allow(player dbref.Ref) (allowed bool, cooldownMs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	b, exists := rl.players[player]
	if !exists {
		b = &bucket{
			tokens:    float64(rl.burstCapacity),
			lastCheck: now,
		}
		rl.players[player] = b
	}

	elapsed := now.Sub(b.lastCheck).Seconds()
	b.tokens = min(b.tokens+elapsed*rl.sustainedRate, float64(rl.burstCapacity))
	b.lastCheck = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}

	deficit := 1.0 - b.tokens
	cooldownMs = int64(deficit / rl.sustainedRate * 1000)
	return false, cooldownMs
}

// PlayerCount returns the number of tracked players.
func (rl *RateLimiter) PlayerCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.players)
}

// Cleanup forgets players that haven't sent input since maxAge ago.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-maxAge)
	for player, b := range rl.players {
		if b.lastCheck.Before(threshold) {
			delete(rl.players, player)
		}
	}

	if rl.playerGauge != nil {
		rl.playerGauge.Set(float64(len(rl.players)))
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	defer rl.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.Cleanup(rl.idleMaxAge)
		}
	}
}

// Close stops the background cleanup goroutine and releases resources.
// It blocks until the goroutine has stopped.
func (rl *RateLimiter) Close() {
	close(rl.stopChan)
	rl.wg.Wait()
}
