// Package navguard intercepts leaving a registration screen while it holds
// unsaved edits.
//
// A guard arms itself on Mount by pushing a single synthetic history entry.
// A back step consumes that entry; when edits exist the guard pushes it again
// and shows the confirmation prompt, so exactly one logical back step is
// intercepted no matter how deep the real history is. The prompt resolves to
// cancel (stay), discard (leave) or save (persist, then leave on success).
package navguard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// State of the guard.
type State int

const (
	StateIdle State = iota
	StatePromptShown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePromptShown:
		return "prompt_shown"
	default:
		return "unknown"
	}
}

// Source identifies what triggered an exit attempt.
type Source int

const (
	SourceHistoryBack Source = iota
	SourceMouseBack
	SourceCloseButton
	SourceProgrammatic
)

func (s Source) String() string {
	switch s {
	case SourceHistoryBack:
		return "history_back"
	case SourceMouseBack:
		return "mouse_back"
	case SourceCloseButton:
		return "close_button"
	case SourceProgrammatic:
		return "programmatic"
	default:
		return "unknown"
	}
}

// consumesHistory reports whether the attempt already popped the synthetic
// entry, which must then be pushed again to stay armed.
func (s Source) consumesHistory() bool {
	return s == SourceHistoryBack || s == SourceProgrammatic
}

// History is the navigation stack of the hosting client.
type History interface {
	PushSynthetic()
}

// Navigator performs the real navigation away from the screen. It is called
// with the guard locked and must not call back into the guard.
type Navigator interface {
	Navigate(destination string)
}

// SaveFunc persists the screen's edits. false or a non-nil error means the
// save failed.
type SaveFunc func(ctx context.Context) (bool, error)

// UnloadEvent is the page-unload attempt handed to BeforeUnload.
type UnloadEvent interface {
	PreventDefault()
	SetReturnValue(value string)
}

// ErrSaveFailed is reported when the save callback returns false without an error.
var ErrSaveFailed = errors.New("save failed")

type Options struct {
	ListDestination   string
	HasUnsavedChanges func() bool
	Save              SaveFunc
	History           History
	Navigator         Navigator
	Logger            *zap.Logger
}

// Guard is the per-screen navigation guard. Methods are safe for concurrent
// use; transitions are applied in call order.
type Guard struct {
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	state   State
	mounted bool
	armed   bool
	saving  atomic.Bool
}

// New builds a guard. It does nothing until Mount is called.
func New(opts Options) *Guard {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.HasUnsavedChanges == nil {
		opts.HasUnsavedChanges = func() bool { return false }
	}
	return &Guard{
		opts: opts,
		log:  logger.With(zap.String("destination", opts.ListDestination)),
	}
}

// Mount arms the guard. The synthetic entry is pushed once per guard.
func (g *Guard) Mount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mounted = true
	g.state = StateIdle
	if !g.armed {
		g.pushSynthetic()
		g.armed = true
	}
}

// Unmount detaches the guard; later events are ignored.
func (g *Guard) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mounted = false
	g.state = StateIdle
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) Mounted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mounted
}

// CanSave reports whether a save action is configured.
func (g *Guard) CanSave() bool {
	return g.opts.Save != nil
}

// Saving reports whether a save is in flight.
func (g *Guard) Saving() bool {
	return g.saving.Load()
}

// Decision is the outcome of an exit attempt.
type Decision struct {
	Navigated   bool
	PromptShown bool
}

// RequestExit handles a back step, mouse back button, close button or
// programmatic exit.
func (g *Guard) RequestExit(source Source) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted {
		return Decision{}
	}
	if !g.opts.HasUnsavedChanges() {
		g.state = StateIdle
		g.navigate("exit without changes", zap.Stringer("source", source))
		return Decision{Navigated: true}
	}
	if source.consumesHistory() {
		g.pushSynthetic()
	}
	g.transition(StatePromptShown, "exit attempt with unsaved changes", zap.Stringer("source", source))
	return Decision{PromptShown: true}
}

// Cancel dismisses the prompt and keeps the screen and its edits.
func (g *Guard) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted || g.state != StatePromptShown || g.saving.Load() {
		return false
	}
	g.transition(StateIdle, "prompt cancelled")
	return true
}

// Discard leaves the screen, dropping the edits.
func (g *Guard) Discard() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted || g.state != StatePromptShown || g.saving.Load() {
		return false
	}
	g.state = StateIdle
	g.navigate("edits discarded")
	return true
}

// SaveStatus classifies a Save call.
type SaveStatus int

const (
	SaveSucceeded SaveStatus = iota
	SaveFailed
	SaveInFlight
	SaveNotConfigured
	SaveIgnored
)

func (s SaveStatus) String() string {
	switch s {
	case SaveSucceeded:
		return "succeeded"
	case SaveFailed:
		return "failed"
	case SaveInFlight:
		return "in_flight"
	case SaveNotConfigured:
		return "not_configured"
	case SaveIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// SaveResult is the outcome of Save. Err is set when Status is SaveFailed.
type SaveResult struct {
	Status SaveStatus
	Err    error
}

// Save runs the save callback from the prompt. It blocks until the callback
// returns. A second Save while one is running is ignored.
func (g *Guard) Save(ctx context.Context) SaveResult {
	if g.opts.Save == nil {
		return SaveResult{Status: SaveNotConfigured}
	}

	g.mu.Lock()
	if !g.mounted || g.state != StatePromptShown {
		g.mu.Unlock()
		return SaveResult{Status: SaveIgnored}
	}
	if !g.saving.CompareAndSwap(false, true) {
		g.mu.Unlock()
		return SaveResult{Status: SaveInFlight}
	}
	g.mu.Unlock()

	ok, err := g.runSave(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.saving.Store(false)
	if err == nil && !ok {
		err = ErrSaveFailed
	}
	if !g.mounted {
		return SaveResult{Status: SaveIgnored, Err: err}
	}
	g.state = StateIdle
	if err != nil {
		g.log.Info("save before exit failed", zap.Error(err))
		return SaveResult{Status: SaveFailed, Err: err}
	}
	g.navigate("saved before exit")
	return SaveResult{Status: SaveSucceeded}
}

func (g *Guard) runSave(ctx context.Context) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, errors.Join(ErrSaveFailed, recoveredError{value: r})
		}
	}()
	return g.opts.Save(ctx)
}

// BeforeUnload asks for the native leave confirmation when edits exist.
func (g *Guard) BeforeUnload(ev UnloadEvent) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted || !g.opts.HasUnsavedChanges() {
		return false
	}
	if ev != nil {
		ev.PreventDefault()
		ev.SetReturnValue("")
	}
	return true
}

func (g *Guard) pushSynthetic() {
	if g.opts.History != nil {
		g.opts.History.PushSynthetic()
	}
}

func (g *Guard) navigate(reason string, fields ...zap.Field) {
	g.log.Debug("navigating away", append(fields, zap.String("reason", reason))...)
	if g.opts.Navigator != nil {
		g.opts.Navigator.Navigate(g.opts.ListDestination)
	}
}

func (g *Guard) transition(to State, reason string, fields ...zap.Field) {
	from := g.state
	g.state = to
	g.log.Debug("guard transition", append(fields,
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("reason", reason),
	)...)
}

type recoveredError struct {
	value any
}

func (e recoveredError) Error() string {
	return fmt.Sprintf("save panicked: %v", e.value)
}
