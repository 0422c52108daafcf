package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fms/api/internal/store"
)

// DataStore defines the interface for data access
type DataStore interface {
	GetSeaBooking(ctx context.Context, id int64) (store.SeaBooking, error)
	ListPorts(ctx context.Context) ([]store.Port, error)
}

// Archiver keeps a copy of generated reports.
type Archiver interface {
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Service renders booking confirmations
type Service struct {
	store   DataStore
	archive Archiver
	log     *zap.Logger
	now     func() time.Time
	pdf     func(ctx context.Context, html string) ([]byte, error)
}

// NewService creates a new export service. archive may be nil.
func NewService(store DataStore, archive Archiver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		archive: archive,
		log:     logger.Named("export"),
		now:     time.Now,
		pdf:     renderPDF,
	}
}

// Export generates a booking confirmation in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	booking, err := s.store.GetSeaBooking(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	data := BookingTemplateData{Booking: booking, GeneratedAt: s.now()}
	// Port names are decoration; the default list covers a failed read.
	ports, _ := s.store.ListPorts(ctx)
	for _, p := range ports {
		if p.Code == booking.POLPortCode {
			data.POLName = p.Name
		}
		if p.Code == booking.PODPortCode {
			data.PODName = p.Name
		}
	}

	html, err := RenderBookingHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	base := sanitizeFilename(booking.BookingNo)
	var result *Result
	switch req.Format {
	case FormatHTML:
		result = &Result{Data: []byte(html), Filename: base + ".html", MimeType: "text/html; charset=utf-8"}
	case FormatPDF, "":
		pdfData, err := s.pdf(ctx, html)
		if err != nil {
			return nil, err
		}
		result = &Result{Data: pdfData, Filename: base + ".pdf", MimeType: "application/pdf"}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}

	if req.Archive && s.archive != nil {
		key, err := s.archive.Store(ctx, result.Filename, result.Data, result.MimeType)
		if err != nil {
			// The download still succeeds without the archived copy.
			s.log.Warn("report archive failed", zap.String("booking_no", booking.BookingNo), zap.Error(err))
		} else {
			result.ArchiveKey = key
			s.log.Info("report archived", zap.String("booking_no", booking.BookingNo), zap.String("key", key))
		}
	}
	return result, nil
}
