package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"fms/api/internal/config"
	"fms/api/internal/draft"
	"fms/api/internal/email"
	"fms/api/internal/export"
	"fms/api/internal/search"
	"fms/api/internal/sorting"
	"fms/api/internal/store"
)

type dataStore interface {
	Ping(ctx context.Context) error
	ListCarriers(context.Context) ([]store.Carrier, error)
	ListPorts(context.Context) ([]store.Port, error)
	ListCustomers(context.Context) ([]store.Customer, error)
	ListSeaBookings(context.Context) ([]store.SeaBooking, error)
	GetSeaBooking(context.Context, int64) (store.SeaBooking, error)
	CreateSeaBooking(context.Context, store.BookingInput, string) (store.SeaBooking, error)
	UpdateSeaBooking(context.Context, int64, store.BookingInput) (store.SeaBooking, error)
	DeleteSeaBooking(context.Context, int64) error
}

type searcher interface {
	Search(ctx context.Context, q search.Query) search.Response
	IndexBooking(b store.SeaBooking)
	DeleteBooking(id int64)
	Reindex(bookings []store.SeaBooking)
}

type exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

type mailer interface {
	IsConfigured() bool
	SendPreAlert(to []string, booking store.SeaBooking, note string) error
}

type Service struct {
	cfg     config.Config
	store   dataStore
	drafts  draft.Store
	search  searcher
	export  exporter
	mail    mailer
	screens *ScreenRegistry
	log     *zap.Logger
}

func New(
	cfg config.Config,
	dataStore *store.PostgresStore,
	drafts draft.Store,
	searchService *search.Service,
	exportService *export.Service,
	emailService *email.Service,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		store:  dataStore,
		drafts: drafts,
		log:    logger,
	}
	if searchService != nil {
		s.search = searchService
	}
	if exportService != nil {
		s.export = exportService
	}
	if emailService != nil {
		s.mail = emailService
	}
	s.screens = NewScreenRegistry(s, logger)
	return s
}

// Bootstrap pushes every live booking into the search index.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.search == nil {
		return nil
	}
	bookings, err := s.store.ListSeaBookings(ctx)
	if err != nil {
		return fmt.Errorf("load bookings for reindex: %w", err)
	}
	s.search.Reindex(bookings)
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Screens() *ScreenRegistry {
	return s.screens
}

// TableView is a sorted table ready for display.
type TableView struct {
	Rows       []sorting.Record `json:"rows"`
	Total      int              `json:"total"`
	Sort       SortView         `json:"sort"`
	StatusText string           `json:"statusText"`
}

type SortView struct {
	Key       string `json:"key,omitempty"`
	Direction string `json:"direction"`
}

var (
	carrierLabels = map[string]string{
		"code":        "선사코드",
		"name":        "선사명",
		"carrierType": "구분",
	}
	portLabels = map[string]string{
		"code":        "항구코드",
		"name":        "항구명",
		"countryCode": "국가",
		"portType":    "구분",
	}
	customerLabels = map[string]string{
		"code":         "거래처코드",
		"name":         "거래처명",
		"customerType": "구분",
	}
	bookingLabels = map[string]string{
		"bookingNo":     "부킹번호",
		"shipperName":   "화주",
		"consigneeName": "수하인",
		"carrierName":   "선사",
		"vesselName":    "선명",
		"voyageNo":      "항차",
		"polPortCode":   "선적항",
		"podPortCode":   "양하항",
		"etd":           "ETD",
		"eta":           "ETA",
		"totalCntrQty":  "컨테이너",
		"status":        "상태",
		"createdAt":     "등록일",
	}
)

func sortedTable(rows []sorting.Record, state sorting.State, labels map[string]string) TableView {
	engine := sorting.NewEngineWithState(state)
	sorted := engine.Sort(rows)
	return TableView{
		Rows:       sorted,
		Total:      len(sorted),
		Sort:       SortView{Key: state.Key, Direction: state.Direction.String()},
		StatusText: engine.StatusText(labels),
	}
}

func (s *Service) ListCarriers(ctx context.Context, state sorting.State) (TableView, error) {
	items, err := s.store.ListCarriers(ctx)
	if err != nil {
		return TableView{}, err
	}
	return sortedTable(store.Records(items), state, carrierLabels), nil
}

// ListPorts falls back to the built-in port list when the table is unreadable.
func (s *Service) ListPorts(ctx context.Context, state sorting.State) (TableView, error) {
	items, err := s.store.ListPorts(ctx)
	if err != nil {
		s.log.Warn("ports table unavailable, serving default ports", zap.Error(err))
		if len(items) == 0 {
			items = store.DefaultPorts()
		}
	}
	return sortedTable(store.Records(items), state, portLabels), nil
}

func (s *Service) ListCustomers(ctx context.Context, state sorting.State) (TableView, error) {
	items, err := s.store.ListCustomers(ctx)
	if err != nil {
		return TableView{}, err
	}
	return sortedTable(store.Records(items), state, customerLabels), nil
}

func (s *Service) ListBookings(ctx context.Context, state sorting.State) (TableView, error) {
	items, err := s.store.ListSeaBookings(ctx)
	if err != nil {
		return TableView{}, err
	}
	return sortedTable(store.Records(items), state, bookingLabels), nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (sorting.Record, error) {
	booking, err := s.store.GetSeaBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return booking.ToRecord(), nil
}

func validateBookingInput(in store.BookingInput) error {
	details := map[string]string{}
	if in.Cntr20GPQty < 0 || in.Cntr40GPQty < 0 || in.Cntr40HCQty < 0 {
		details["containers"] = "container quantities cannot be negative"
	}
	if in.GrossWeightKg < 0 {
		details["grossWeightKg"] = "cannot be negative"
	}
	if in.VolumeCBM < 0 {
		details["volumeCbm"] = "cannot be negative"
	}
	if len(details) > 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid booking", details)
	}
	return nil
}

func (s *Service) CreateBooking(ctx context.Context, in store.BookingInput, createdBy string) (store.SeaBooking, error) {
	if err := validateBookingInput(in); err != nil {
		return store.SeaBooking{}, err
	}
	booking, err := s.store.CreateSeaBooking(ctx, in, createdBy)
	if err != nil {
		return store.SeaBooking{}, err
	}
	s.log.Info("sea booking created", zap.Int64("booking_id", booking.ID), zap.String("booking_no", booking.BookingNo))
	if s.search != nil {
		s.search.IndexBooking(booking)
	}
	return booking, nil
}

func (s *Service) UpdateBooking(ctx context.Context, id int64, in store.BookingInput) (store.SeaBooking, error) {
	if err := validateBookingInput(in); err != nil {
		return store.SeaBooking{}, err
	}
	booking, err := s.store.UpdateSeaBooking(ctx, id, in)
	if err != nil {
		return store.SeaBooking{}, err
	}
	if s.search != nil {
		s.search.IndexBooking(booking)
	}
	return booking, nil
}

func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.store.DeleteSeaBooking(ctx, id); err != nil {
		return err
	}
	s.log.Info("sea booking deleted", zap.Int64("booking_id", id))
	if s.search != nil {
		s.search.DeleteBooking(id)
	}
	return nil
}

func (s *Service) Search(ctx context.Context, q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text, Engine: "none"}
	}
	return s.search.Search(ctx, q)
}

func (s *Service) ExportBooking(ctx context.Context, req export.Request) (*export.Result, error) {
	if s.export == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export is not configured", nil)
	}
	return s.export.Export(ctx, req)
}

// PreAlertInput addresses a pre-alert notice.
type PreAlertInput struct {
	To   []string `json:"to"`
	Note string   `json:"note"`
}

func (s *Service) SendPreAlert(ctx context.Context, id int64, in PreAlertInput) error {
	if s.mail == nil || !s.mail.IsConfigured() {
		return domainError(http.StatusServiceUnavailable, "EMAIL_NOT_CONFIGURED", "Email is not configured", nil)
	}
	recipients := make([]string, 0, len(in.To))
	for _, raw := range in.To {
		addr, err := mail.ParseAddress(strings.TrimSpace(raw))
		if err != nil {
			return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid recipient", map[string]string{"to": raw})
		}
		recipients = append(recipients, addr.Address)
	}
	if len(recipients) == 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "At least one recipient is required", nil)
	}

	booking, err := s.store.GetSeaBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.mail.SendPreAlert(recipients, booking, strings.TrimSpace(in.Note)); err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			return domainError(http.StatusServiceUnavailable, "EMAIL_NOT_CONFIGURED", "Email is not configured", nil)
		}
		return fmt.Errorf("send pre-alert: %w", err)
	}
	s.log.Info("pre-alert sent", zap.String("booking_no", booking.BookingNo), zap.Int("recipients", len(recipients)))
	return nil
}

// saveScreenDraft persists the draft held by a booking screen as a booking.
func (s *Service) saveScreenDraft(ctx context.Context, screenID string, bookingID *int64) (store.SeaBooking, error) {
	d, err := s.drafts.Load(ctx, screenID)
	if err != nil {
		return store.SeaBooking{}, err
	}
	if bookingID != nil {
		return s.UpdateBooking(ctx, *bookingID, d.Input)
	}
	return s.CreateBooking(ctx, d.Input, "")
}
