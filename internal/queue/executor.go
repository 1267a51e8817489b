// Package queue is the DJ console's local view of the request queue. Every
// mutation is applied locally first, sent to the API, and rolled back if the
// API refuses it.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stagedoor/backend/internal/models"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrNotBlacklisted  = errors.New("song is not blacklisted")
	ErrClosed          = errors.New("queue closed")

	// errNoop lets a Forward step skip the remote call entirely.
	errNoop = errors.New("nothing to do")
)

// State is the console's copy of the three song collections.
type State struct {
	Requests  []models.SongRequest
	Cooldown  []models.CooldownSong
	Blacklist []models.BlacklistedSong
}

func (s State) clone() State {
	return State{
		Requests:  append([]models.SongRequest(nil), s.Requests...),
		Cooldown:  append([]models.CooldownSong(nil), s.Cooldown...),
		Blacklist: append([]models.BlacklistedSong(nil), s.Blacklist...),
	}
}

// Command is one optimistic mutation. Forward may refuse by returning an
// error, in which case nothing else runs. Inverse must undo only what its own
// Forward did so that interleaved commands roll back independently.
type Command struct {
	Name    string
	Forward func(*State) error
	Inverse func(*State)
	Remote  func(ctx context.Context) error
}

// Executor owns State and the single error slot shown as a banner.
type Executor struct {
	mu     sync.Mutex
	state  State
	err    error
	closed bool
}

// Execute applies cmd.Forward, waits for cmd.Remote without holding the lock
// and applies cmd.Inverse if the remote call failed. Remote failures are
// also recorded in the error slot. Nothing is retried.
func (e *Executor) Execute(ctx context.Context, cmd Command) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if err := cmd.Forward(&e.state); err != nil {
		e.mu.Unlock()
		if errors.Is(err, errNoop) {
			return nil
		}
		return err
	}
	e.mu.Unlock()

	remoteErr := cmd.Remote(ctx)
	if remoteErr == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		// Torn down while the call was in flight; nobody is looking.
		return remoteErr
	}
	if cmd.Inverse != nil {
		cmd.Inverse(&e.state)
	}
	e.err = fmt.Errorf("%s: %w", cmd.Name, remoteErr)
	return remoteErr
}

// Replace swaps in a freshly fetched state.
func (e *Executor) Replace(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.state = s.clone()
	}
}

// Snapshot returns a copy of the current state.
func (e *Executor) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Update runs fn under the lock for local-only changes.
func (e *Executor) Update(fn func(*State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		fn(&e.state)
	}
}

// Fail records err in the error slot unless the executor is closed.
func (e *Executor) Fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.err = err
	}
}

// Err returns the current banner error, if any.
func (e *Executor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Executor) DismissError() {
	e.mu.Lock()
	e.err = nil
	e.mu.Unlock()
}

// Close stops all state changes. Completions of commands still in flight
// are ignored.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
