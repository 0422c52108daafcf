package navguard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeHistory struct {
	pushes atomic.Int32
}

func (h *fakeHistory) PushSynthetic() { h.pushes.Inc() }

type fakeNavigator struct {
	mu   sync.Mutex
	seen []string
}

func (n *fakeNavigator) Navigate(destination string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, destination)
}

func (n *fakeNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.seen)
}

type fakeUnload struct {
	prevented   bool
	returnValue *string
}

func (e *fakeUnload) PreventDefault() { e.prevented = true }
func (e *fakeUnload) SetReturnValue(v string) {
	e.returnValue = &v
}

type harness struct {
	guard   *Guard
	history *fakeHistory
	nav     *fakeNavigator
	dirty   *atomic.Bool
}

func newHarness(t *testing.T, save SaveFunc) *harness {
	t.Helper()
	h := &harness{
		history: &fakeHistory{},
		nav:     &fakeNavigator{},
		dirty:   atomic.NewBool(false),
	}
	h.guard = New(Options{
		ListDestination:   "/logis/booking/sea",
		HasUnsavedChanges: h.dirty.Load,
		Save:              save,
		History:           h.history,
		Navigator:         h.nav,
	})
	h.guard.Mount()
	return h
}

func TestMountPushesSyntheticEntryOnce(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, int32(1), h.history.pushes.Load())
	assert.Equal(t, StateIdle, h.guard.State())

	h.guard.Unmount()
	h.guard.Mount()
	assert.Equal(t, int32(1), h.history.pushes.Load(), "remount must not push again")
}

func TestExitWithoutChangesNavigatesImmediately(t *testing.T) {
	for _, source := range []Source{SourceHistoryBack, SourceMouseBack, SourceCloseButton, SourceProgrammatic} {
		t.Run(source.String(), func(t *testing.T) {
			h := newHarness(t, nil)

			decision := h.guard.RequestExit(source)

			assert.Equal(t, Decision{Navigated: true}, decision)
			assert.Equal(t, StateIdle, h.guard.State())
			assert.Equal(t, []string{"/logis/booking/sea"}, h.nav.seen)
		})
	}
}

func TestExitWithChangesShowsPrompt(t *testing.T) {
	h := newHarness(t, nil)
	h.dirty.Store(true)

	decision := h.guard.RequestExit(SourceHistoryBack)

	assert.Equal(t, Decision{PromptShown: true}, decision)
	assert.Equal(t, StatePromptShown, h.guard.State())
	assert.Zero(t, h.nav.count())
	assert.Equal(t, int32(2), h.history.pushes.Load(), "history back re-arms the synthetic entry")
}

func TestMouseBackAndCloseDoNotRepushHistory(t *testing.T) {
	h := newHarness(t, nil)
	h.dirty.Store(true)

	h.guard.RequestExit(SourceMouseBack)
	require.True(t, h.guard.Cancel())
	h.guard.RequestExit(SourceCloseButton)

	assert.Equal(t, StatePromptShown, h.guard.State())
	assert.Equal(t, int32(1), h.history.pushes.Load())
}

func TestCancelKeepsGuardArmed(t *testing.T) {
	h := newHarness(t, nil)
	h.dirty.Store(true)

	h.guard.RequestExit(SourceHistoryBack)
	require.True(t, h.guard.Cancel())
	assert.Equal(t, StateIdle, h.guard.State())
	assert.Zero(t, h.nav.count())

	decision := h.guard.RequestExit(SourceHistoryBack)
	assert.True(t, decision.PromptShown)
	assert.Equal(t, StatePromptShown, h.guard.State())
	assert.Zero(t, h.nav.count())
}

func TestCancelOutsidePromptIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	assert.False(t, h.guard.Cancel())
	assert.False(t, h.guard.Discard())
	assert.Zero(t, h.nav.count())
}

func TestDiscardNavigatesOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.dirty.Store(true)
	h.guard.RequestExit(SourceHistoryBack)

	require.True(t, h.guard.Discard())
	assert.False(t, h.guard.Discard(), "second discard has no prompt to resolve")

	assert.Equal(t, StateIdle, h.guard.State())
	assert.Equal(t, 1, h.nav.count())
}

func TestSaveSuccessNavigatesAfterCallback(t *testing.T) {
	var h *harness
	h = newHarness(t, func(context.Context) (bool, error) {
		assert.Zero(t, h.nav.count(), "navigation must wait for the save to settle")
		return true, nil
	})
	h.dirty.Store(true)
	h.guard.RequestExit(SourceHistoryBack)

	result := h.guard.Save(context.Background())

	assert.Equal(t, SaveSucceeded, result.Status)
	assert.NoError(t, result.Err)
	assert.Equal(t, 1, h.nav.count())
	assert.Equal(t, StateIdle, h.guard.State())
}

func TestSaveFailureKeepsUserOnScreen(t *testing.T) {
	calls := atomic.NewInt32(0)
	h := newHarness(t, func(context.Context) (bool, error) {
		if calls.Inc() == 1 {
			return false, nil
		}
		return true, nil
	})
	h.dirty.Store(true)
	h.guard.RequestExit(SourceHistoryBack)

	result := h.guard.Save(context.Background())
	assert.Equal(t, SaveFailed, result.Status)
	assert.ErrorIs(t, result.Err, ErrSaveFailed)
	assert.Zero(t, h.nav.count())
	assert.Equal(t, StateIdle, h.guard.State())
	assert.True(t, h.dirty.Load(), "edits stay intact")

	h.guard.RequestExit(SourceHistoryBack)
	retry := h.guard.Save(context.Background())
	assert.Equal(t, SaveSucceeded, retry.Status)
	assert.Equal(t, 1, h.nav.count())
}

func TestSaveErrorIsReported(t *testing.T) {
	boom := errors.New("db down")
	h := newHarness(t, func(context.Context) (bool, error) { return false, boom })
	h.dirty.Store(true)
	h.guard.RequestExit(SourceCloseButton)

	result := h.guard.Save(context.Background())

	assert.Equal(t, SaveFailed, result.Status)
	assert.ErrorIs(t, result.Err, boom)
	assert.Zero(t, h.nav.count())
}

func TestSavePanicIsReportedAsFailure(t *testing.T) {
	h := newHarness(t, func(context.Context) (bool, error) { panic("unexpected") })
	h.dirty.Store(true)
	h.guard.RequestExit(SourceCloseButton)

	result := h.guard.Save(context.Background())

	assert.Equal(t, SaveFailed, result.Status)
	assert.ErrorIs(t, result.Err, ErrSaveFailed)
	assert.False(t, h.guard.Saving())
}

func TestSaveNotConfiguredOrOutsidePrompt(t *testing.T) {
	h := newHarness(t, nil)
	h.dirty.Store(true)
	h.guard.RequestExit(SourceCloseButton)
	assert.Equal(t, SaveNotConfigured, h.guard.Save(context.Background()).Status)
	assert.False(t, h.guard.CanSave())

	withSave := newHarness(t, func(context.Context) (bool, error) { return true, nil })
	assert.Equal(t, SaveIgnored, withSave.guard.Save(context.Background()).Status)
	assert.Zero(t, withSave.nav.count())
}

func TestConcurrentSaveIsIgnoredWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := atomic.NewInt32(0)
	h := newHarness(t, func(context.Context) (bool, error) {
		calls.Inc()
		close(started)
		<-release
		return true, nil
	})
	h.dirty.Store(true)
	h.guard.RequestExit(SourceHistoryBack)

	done := make(chan SaveResult, 1)
	go func() { done <- h.guard.Save(context.Background()) }()
	<-started

	assert.True(t, h.guard.Saving())
	assert.Equal(t, SaveInFlight, h.guard.Save(context.Background()).Status)
	assert.False(t, h.guard.Cancel(), "cancel is not accepted once a save started")

	close(release)
	select {
	case result := <-done:
		assert.Equal(t, SaveSucceeded, result.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("save did not finish")
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, h.nav.count())
}

func TestBeforeUnload(t *testing.T) {
	h := newHarness(t, nil)

	clean := &fakeUnload{}
	assert.False(t, h.guard.BeforeUnload(clean))
	assert.False(t, clean.prevented)
	assert.Nil(t, clean.returnValue)

	h.dirty.Store(true)
	dirty := &fakeUnload{}
	assert.True(t, h.guard.BeforeUnload(dirty))
	assert.True(t, dirty.prevented)
	require.NotNil(t, dirty.returnValue)
	assert.Equal(t, "", *dirty.returnValue)
	assert.Equal(t, StateIdle, h.guard.State(), "unload does not change state")
}

func TestUnmountedGuardIgnoresEvents(t *testing.T) {
	h := newHarness(t, nil)
	h.dirty.Store(true)
	h.guard.Unmount()

	assert.Equal(t, Decision{}, h.guard.RequestExit(SourceHistoryBack))
	assert.False(t, h.guard.BeforeUnload(&fakeUnload{}))
	assert.False(t, h.guard.Mounted())
	assert.Zero(t, h.nav.count())
	assert.Equal(t, int32(1), h.history.pushes.Load())
}

func TestGuardWithoutChangeSourceNeverPrompts(t *testing.T) {
	nav := &fakeNavigator{}
	g := New(Options{ListDestination: "/", Navigator: nav})
	g.Mount()

	assert.True(t, g.RequestExit(SourceHistoryBack).Navigated)
	assert.Equal(t, []string{"/"}, nav.seen)
}
