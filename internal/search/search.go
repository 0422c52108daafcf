package search

import (
	"strconv"

	"fms/api/internal/store"
)

// Result is a single booking hit returned to the caller.
type Result struct {
	ID          string `json:"id"`
	BookingNo   string `json:"bookingNo"`
	VesselName  string `json:"vesselName"`
	ShipperName string `json:"shipperName"`
	Snippet     string `json:"snippet"`
	Status      string `json:"status"`
	ETD         string `json:"etd,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Engine  string   `json:"engine"`
}

// BookingRecord is the data we index for a sea booking.
type BookingRecord struct {
	ID            string `json:"id"`
	BookingNo     string `json:"bookingNo"`
	VesselName    string `json:"vesselName"`
	VoyageNo      string `json:"voyageNo"`
	ShipperName   string `json:"shipperName"`
	ConsigneeName string `json:"consigneeName"`
	POLPortCode   string `json:"polPortCode"`
	PODPortCode   string `json:"podPortCode"`
	Status        string `json:"status"`
	ETD           string `json:"etd"`
}

// RecordFromBooking flattens a booking into its index document.
func RecordFromBooking(b store.SeaBooking) BookingRecord {
	record := BookingRecord{
		ID:            strconv.FormatInt(b.ID, 10),
		BookingNo:     b.BookingNo,
		VesselName:    b.VesselName,
		VoyageNo:      b.VoyageNo,
		ShipperName:   b.ShipperName,
		ConsigneeName: b.ConsigneeName,
		POLPortCode:   b.POLPortCode,
		PODPortCode:   b.PODPortCode,
		Status:        b.Status,
	}
	if b.ETD != nil {
		record.ETD = b.ETD.Format("2006-01-02")
	}
	return record
}

func resultFromBooking(b store.SeaBooking) Result {
	r := RecordFromBooking(b)
	return Result{
		ID:          r.ID,
		BookingNo:   r.BookingNo,
		VesselName:  r.VesselName,
		ShipperName: r.ShipperName,
		Snippet:     joinNonBlank(" / ", r.ShipperName, r.ConsigneeName),
		Status:      r.Status,
		ETD:         r.ETD,
	}
}

func normalize(q Query) Query {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
