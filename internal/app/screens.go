package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"fms/api/internal/draft"
	"fms/api/internal/navguard"
	"fms/api/internal/store"
	"fms/api/internal/util"
)

// ScreenRegistry hosts the navigation guard of every open registration screen
// for clients that cannot run one locally.
// A screen left idle for longer than the draft TTL is evicted.
type ScreenRegistry struct {
	service *Service
	log     *zap.Logger
	now     func() time.Time
	mu      sync.Mutex
	screens map[string]*screen
}

type screen struct {
	id        string
	kind      ScreenKind
	listPath  string
	guard     *navguard.Guard
	dirty     *atomic.Bool
	recorder  *screenRecorder
	seen      *atomic.Time
	mu        sync.Mutex
	bookingID *int64
}

// screenRecorder stands in for the client's history stack and router.
type screenRecorder struct {
	pushes      atomic.Int32
	navigations atomic.Int32
	mu          sync.Mutex
	destination string
}

func (r *screenRecorder) PushSynthetic() { r.pushes.Inc() }

func (r *screenRecorder) Navigate(destination string) {
	r.mu.Lock()
	r.destination = destination
	r.mu.Unlock()
	r.navigations.Inc()
}

func (r *screenRecorder) lastDestination() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destination
}

type recorderMark struct {
	pushes      int32
	navigations int32
}

func (r *screenRecorder) mark() recorderMark {
	return recorderMark{pushes: r.pushes.Load(), navigations: r.navigations.Load()}
}

// unloadRecorder captures what a beforeunload handler asked of the page.
type unloadRecorder struct {
	prevented   bool
	returnValue *string
}

func (e *unloadRecorder) PreventDefault() { e.prevented = true }
func (e *unloadRecorder) SetReturnValue(v string) {
	e.returnValue = &v
}

// ScreenView is the client-facing outcome of a screen operation.
type ScreenView struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	BookingID     *int64 `json:"bookingId,omitempty"`
	ListPath      string `json:"listPath"`
	State         string `json:"state"`
	ShowPrompt    bool   `json:"showPrompt"`
	Dirty         bool   `json:"dirty"`
	CanSave       bool   `json:"canSave"`
	Saving        bool   `json:"saving"`
	Accepted      bool   `json:"accepted"`
	NavigateTo    string `json:"navigateTo,omitempty"`
	PushHistory   int    `json:"pushHistory"`
	ConfirmUnload bool   `json:"confirmUnload"`
	SaveStatus    string `json:"saveStatus,omitempty"`
	SaveError     string `json:"saveError,omitempty"`
	Closed        bool   `json:"closed"`
}

func NewScreenRegistry(service *Service, logger *zap.Logger) *ScreenRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenRegistry{
		service: service,
		log:     logger.Named("screens"),
		now:     time.Now,
		screens: map[string]*screen{},
	}
}

// OpenScreenInput opens a registration screen, optionally editing an existing booking.
type OpenScreenInput struct {
	Kind      string `json:"kind"`
	BookingID *int64 `json:"bookingId"`
}

// Open mounts a new screen. Opening arms its guard with one synthetic history entry.
func (r *ScreenRegistry) Open(ctx context.Context, in OpenScreenInput) (ScreenView, error) {
	kind := ScreenKind(strings.ToUpper(strings.TrimSpace(in.Kind)))
	listPath, ok := ListPath(kind)
	if !ok {
		return ScreenView{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown screen kind", map[string]string{"kind": in.Kind})
	}
	if in.BookingID != nil {
		if kind != KindBookingSea {
			return ScreenView{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "bookingId is only valid for BOOKING_SEA", nil)
		}
		if _, err := r.service.store.GetSeaBooking(ctx, *in.BookingID); err != nil {
			return ScreenView{}, err
		}
	}
	r.sweep(ctx)

	sc := &screen{
		id:        util.NewID("scr"),
		kind:      kind,
		listPath:  listPath,
		dirty:     atomic.NewBool(false),
		recorder:  &screenRecorder{},
		seen:      atomic.NewTime(r.now()),
		bookingID: in.BookingID,
	}
	opts := navguard.Options{
		ListDestination:   listPath,
		HasUnsavedChanges: sc.dirty.Load,
		History:           sc.recorder,
		Navigator:         sc.recorder,
		Logger:            r.log.With(zap.String("screen_id", sc.id)),
	}
	if kind == KindBookingSea {
		opts.Save = r.saveFunc(sc)
	}
	sc.guard = navguard.New(opts)

	before := sc.recorder.mark()
	sc.guard.Mount()

	r.mu.Lock()
	r.screens[sc.id] = sc
	r.mu.Unlock()

	r.log.Debug("screen opened", zap.String("screen_id", sc.id), zap.String("kind", string(kind)))
	view := r.view(sc, before)
	view.Accepted = true
	return view, nil
}

func (r *ScreenRegistry) saveFunc(sc *screen) navguard.SaveFunc {
	return func(ctx context.Context) (bool, error) {
		sc.mu.Lock()
		bookingID := sc.bookingID
		sc.mu.Unlock()

		booking, err := r.service.saveScreenDraft(ctx, sc.id, bookingID)
		if err != nil {
			return false, err
		}

		sc.mu.Lock()
		id := booking.ID
		sc.bookingID = &id
		sc.mu.Unlock()
		if err := r.service.drafts.Delete(ctx, sc.id); err != nil {
			r.log.Warn("clear saved draft", zap.String("screen_id", sc.id), zap.Error(err))
		}
		sc.dirty.Store(false)
		return true, nil
	}
}

// get looks up a live screen and marks it as seen. Idle screens are evicted first.
func (r *ScreenRegistry) get(ctx context.Context, id string) (*screen, error) {
	r.sweep(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.screens[id]
	if !ok {
		return nil, domainError(http.StatusNotFound, "SCREEN_NOT_FOUND", "Screen not found", nil)
	}
	sc.seen.Store(r.now())
	return sc, nil
}

func (r *ScreenRegistry) idleTTL() time.Duration {
	if ttl := r.service.cfg.DraftTTL(); ttl > 0 {
		return ttl
	}
	return 24 * time.Hour
}

// sweep unmounts screens idle for longer than the draft TTL. A screen whose
// save is still running is kept.
func (r *ScreenRegistry) sweep(ctx context.Context) {
	cutoff := r.now().Add(-r.idleTTL())

	r.mu.Lock()
	var expired []*screen
	for id, sc := range r.screens {
		if sc.seen.Load().After(cutoff) || sc.guard.Saving() {
			continue
		}
		expired = append(expired, sc)
		delete(r.screens, id)
	}
	r.mu.Unlock()

	for _, sc := range expired {
		sc.guard.Unmount()
		if err := r.service.drafts.Delete(ctx, sc.id); err != nil {
			r.log.Warn("drop draft of expired screen", zap.String("screen_id", sc.id), zap.Error(err))
		}
		r.log.Debug("screen expired", zap.String("screen_id", sc.id))
	}
}

// refreshDirty clears the unsaved flag once the stored draft has expired, so
// the guard stops prompting for edits that no longer exist.
func (r *ScreenRegistry) refreshDirty(ctx context.Context, sc *screen) {
	if !sc.dirty.Load() {
		return
	}
	if _, err := r.service.drafts.Load(ctx, sc.id); errors.Is(err, draft.ErrNotFound) {
		sc.dirty.Store(false)
		r.log.Debug("draft expired", zap.String("screen_id", sc.id))
	}
}

func (r *ScreenRegistry) Get(id string) (ScreenView, error) {
	sc, err := r.get(context.Background(), id)
	if err != nil {
		return ScreenView{}, err
	}
	view := r.view(sc, sc.recorder.mark())
	view.Accepted = true
	return view, nil
}

// Count reports the number of open screens.
func (r *ScreenRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}

// UpdateDraft stores the form content and marks the screen as holding unsaved edits.
func (r *ScreenRegistry) UpdateDraft(ctx context.Context, id string, in store.BookingInput) (ScreenView, error) {
	sc, err := r.get(ctx, id)
	if err != nil {
		return ScreenView{}, err
	}
	sc.mu.Lock()
	bookingID := sc.bookingID
	sc.mu.Unlock()

	err = r.service.drafts.Save(ctx, draft.Draft{
		ScreenID:  sc.id,
		BookingID: bookingID,
		Input:     in,
		UpdatedAt: r.now().UTC(),
	}, r.idleTTL())
	if err != nil {
		return ScreenView{}, err
	}
	sc.dirty.Store(true)

	view := r.view(sc, sc.recorder.mark())
	view.Accepted = true
	return view, nil
}

// Draft returns the stored form content of a screen.
func (r *ScreenRegistry) Draft(ctx context.Context, id string) (draft.Draft, error) {
	sc, err := r.get(ctx, id)
	if err != nil {
		return draft.Draft{}, err
	}
	d, err := r.service.drafts.Load(ctx, sc.id)
	if errors.Is(err, draft.ErrNotFound) {
		return draft.Draft{}, domainError(http.StatusNotFound, "DRAFT_NOT_FOUND", "No draft stored for screen", nil)
	}
	return d, err
}

// ScreenAction is a user action on an open screen.
type ScreenAction string

const (
	ActionBack      ScreenAction = "back"
	ActionMouseBack ScreenAction = "mouse-back"
	ActionClose     ScreenAction = "close"
	ActionExit      ScreenAction = "exit"
	ActionCancel    ScreenAction = "cancel"
	ActionDiscard   ScreenAction = "discard"
	ActionSave      ScreenAction = "save"
	ActionUnload    ScreenAction = "unload"
)

var exitSources = map[ScreenAction]navguard.Source{
	ActionBack:      navguard.SourceHistoryBack,
	ActionMouseBack: navguard.SourceMouseBack,
	ActionClose:     navguard.SourceCloseButton,
	ActionExit:      navguard.SourceProgrammatic,
}

// Apply runs action against the screen's guard. A screen that navigated away is closed.
func (r *ScreenRegistry) Apply(ctx context.Context, id string, action ScreenAction) (ScreenView, error) {
	sc, err := r.get(ctx, id)
	if err != nil {
		return ScreenView{}, err
	}
	switch action {
	case ActionBack, ActionMouseBack, ActionClose, ActionExit, ActionSave, ActionUnload:
		r.refreshDirty(ctx, sc)
	}

	before := sc.recorder.mark()
	var (
		accepted      bool
		confirmUnload bool
		saveResult    *navguard.SaveResult
	)
	switch action {
	case ActionBack, ActionMouseBack, ActionClose, ActionExit:
		decision := sc.guard.RequestExit(exitSources[action])
		accepted = decision.Navigated || decision.PromptShown
	case ActionCancel:
		accepted = sc.guard.Cancel()
	case ActionDiscard:
		accepted = sc.guard.Discard()
	case ActionSave:
		result := sc.guard.Save(ctx)
		saveResult = &result
		accepted = result.Status == navguard.SaveSucceeded || result.Status == navguard.SaveFailed
	case ActionUnload:
		ev := &unloadRecorder{}
		confirmUnload = sc.guard.BeforeUnload(ev)
		accepted = true
	default:
		return ScreenView{}, domainError(http.StatusNotFound, "UNKNOWN_ACTION", "Unknown screen action", map[string]string{"action": string(action)})
	}

	view := r.view(sc, before)
	view.Accepted = accepted
	view.ConfirmUnload = confirmUnload
	if saveResult != nil {
		view.SaveStatus = saveResult.Status.String()
		if saveResult.Err != nil {
			view.SaveError = saveErrorMessage(saveResult.Err)
		}
	}
	if view.NavigateTo != "" {
		r.close(ctx, sc)
		view.Closed = true
	}
	return view, nil
}

// Close unmounts the screen without navigating and drops its draft.
func (r *ScreenRegistry) Close(ctx context.Context, id string) error {
	sc, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	r.close(ctx, sc)
	return nil
}

func (r *ScreenRegistry) close(ctx context.Context, sc *screen) {
	sc.guard.Unmount()
	r.mu.Lock()
	delete(r.screens, sc.id)
	r.mu.Unlock()
	if err := r.service.drafts.Delete(ctx, sc.id); err != nil {
		r.log.Warn("drop draft of closed screen", zap.String("screen_id", sc.id), zap.Error(err))
	}
	r.log.Debug("screen closed", zap.String("screen_id", sc.id))
}

func (r *ScreenRegistry) view(sc *screen, before recorderMark) ScreenView {
	after := sc.recorder.mark()
	sc.mu.Lock()
	bookingID := sc.bookingID
	sc.mu.Unlock()

	state := sc.guard.State()
	view := ScreenView{
		ID:          sc.id,
		Kind:        string(sc.kind),
		BookingID:   bookingID,
		ListPath:    sc.listPath,
		State:       state.String(),
		ShowPrompt:  state == navguard.StatePromptShown,
		Dirty:       sc.dirty.Load(),
		CanSave:     sc.guard.CanSave(),
		Saving:      sc.guard.Saving(),
		PushHistory: int(after.pushes - before.pushes),
	}
	if after.navigations > before.navigations {
		view.NavigateTo = sc.recorder.lastDestination()
	}
	return view
}

func saveErrorMessage(err error) string {
	var domainErr *DomainError
	switch {
	case errors.As(err, &domainErr):
		return domainErr.Message
	case errors.Is(err, draft.ErrNotFound):
		return "No draft stored for screen"
	case errors.Is(err, store.ErrNotFound):
		return "Booking not found"
	case errors.Is(err, navguard.ErrSaveFailed):
		return "Save failed"
	}
	var invalid *store.InvalidInputError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	return "Save failed"
}
