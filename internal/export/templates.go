package export

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"time"

	"fms/api/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var bookingTemplate = template.Must(
	template.New("booking_confirmation.html").Funcs(template.FuncMap{
		"date": formatDate,
		"qty":  formatQty,
	}).ParseFS(templateFS, "templates/booking_confirmation.html"),
)

// BookingTemplateData holds data for the booking confirmation template
type BookingTemplateData struct {
	Booking     store.SeaBooking
	POLName     string
	PODName     string
	GeneratedAt time.Time
}

// RenderBookingHTML renders the booking confirmation with provided data
func RenderBookingHTML(data BookingTemplateData) (string, error) {
	var buf bytes.Buffer
	if err := bookingTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatQty(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
