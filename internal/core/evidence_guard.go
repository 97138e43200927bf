package core

// evidence_guard.go keeps evidence processing single-flight.
//
// Extracting screenshots from a test-run log is slow and the backend keeps a
// single evidence directory, so only one upload may be processed at a time.
// A second upload fails fast with ErrEvidenceInProgress instead of queueing.
//
// WaitForDrain lets the server finish an in-flight upload before shutdown.

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	// ErrEvidenceInProgress is returned while another log is being processed.
	ErrEvidenceInProgress = errors.New("evidence processing already in progress")

	// ErrInvalidEvidenceFile is returned for files that are not HTML logs.
	ErrInvalidEvidenceFile = errors.New("evidence log must be an .html file")
)

// EvidenceGuard is a one-slot semaphore around evidence processing.
type EvidenceGuard struct {
	slot chan struct{}

	mu      sync.RWMutex
	current string
	started time.Time
}

// NewEvidenceGuard creates an idle guard.
func NewEvidenceGuard() *EvidenceGuard {
	return &EvidenceGuard{slot: make(chan struct{}, 1)}
}

// TryAcquire claims the slot for the named file without blocking.
// It returns ErrEvidenceInProgress when the slot is taken.
// The caller MUST call Release() when processing completes (use defer).
func (g *EvidenceGuard) TryAcquire(name string) error {
	select {
	case g.slot <- struct{}{}:
		g.mu.Lock()
		g.current = name
		g.started = time.Now()
		g.mu.Unlock()
		return nil
	default:
		return ErrEvidenceInProgress
	}
}

// Release frees the slot.
// Must be called exactly once for each successful TryAcquire.
func (g *EvidenceGuard) Release() {
	g.mu.Lock()
	g.current = ""
	g.started = time.Time{}
	g.mu.Unlock()

	<-g.slot
}

// Active reports whether a log is being processed.
func (g *EvidenceGuard) Active() bool {
	return len(g.slot) > 0
}

// WaitForDrain blocks until the in-flight upload completes or ctx is cancelled.
func (g *EvidenceGuard) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !g.Active() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// EvidenceGuardStatus is a snapshot of the guard's state.
type EvidenceGuardStatus struct {
	Active  bool      `json:"active"`
	File    string    `json:"file,omitempty"`
	Started time.Time `json:"started,omitempty"`
}

// Status returns the current guard state for monitoring/debugging.
func (g *EvidenceGuard) Status() EvidenceGuardStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return EvidenceGuardStatus{
		Active:  len(g.slot) > 0,
		File:    g.current,
		Started: g.started,
	}
}

// IsEvidenceFile reports whether name has an HTML log extension.
func IsEvidenceFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}
