package store

import (
	"time"

	"fms/api/internal/sorting"
)

const dateLayout = "2006-01-02"

type Carrier struct {
	ID          int64
	Code        string
	Name        string
	CarrierType string
	CreatedAt   time.Time
}

func (c Carrier) ToRecord() sorting.Record {
	return sorting.Record{
		"id":          c.ID,
		"code":        c.Code,
		"name":        c.Name,
		"carrierType": c.CarrierType,
	}
}

type Port struct {
	Code        string
	Name        string
	CountryCode string
	PortType    string
}

func (p Port) ToRecord() sorting.Record {
	return sorting.Record{
		"code":        p.Code,
		"name":        p.Name,
		"countryCode": p.CountryCode,
		"portType":    p.PortType,
	}
}

type Customer struct {
	ID           int64
	Code         string
	Name         string
	CustomerType string
	CreatedAt    time.Time
}

func (c Customer) ToRecord() sorting.Record {
	return sorting.Record{
		"id":           c.ID,
		"code":         c.Code,
		"name":         c.Name,
		"customerType": c.CustomerType,
	}
}

// SeaBooking is one ocean export/import booking. Dates are nil until set.
type SeaBooking struct {
	ID               int64
	BookingNo        string
	BookingType      string
	ServiceType      string
	Incoterms        string
	PaymentTerms     string
	ShipperName      string
	ConsigneeName    string
	NotifyName       string
	CarrierBookingNo string
	CarrierID        *int64
	CarrierName      string
	VesselName       string
	VoyageNo         string
	POLPortCode      string
	PODPortCode      string
	ETD              *time.Time
	ETA              *time.Time
	ClosingDate      *time.Time
	Cntr20GPQty      int
	Cntr40GPQty      int
	Cntr40HCQty      int
	TotalCntrQty     int
	CommodityDesc    string
	GrossWeightKg    float64
	VolumeCBM        float64
	Status           string
	Remark           string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BookingInput carries the editable fields of a sea booking.
type BookingInput struct {
	BookingType      string  `json:"bookingType"`
	ServiceType      string  `json:"serviceType"`
	Incoterms        string  `json:"incoterms"`
	PaymentTerms     string  `json:"paymentTerms"`
	ShipperName      string  `json:"shipperName"`
	ConsigneeName    string  `json:"consigneeName"`
	NotifyName       string  `json:"notifyName"`
	CarrierBookingNo string  `json:"carrierBookingNo"`
	CarrierID        *int64  `json:"carrierId"`
	VesselName       string  `json:"vesselName"`
	VoyageNo         string  `json:"voyageNo"`
	POLPortCode      string  `json:"polPortCode"`
	PODPortCode      string  `json:"podPortCode"`
	ETD              string  `json:"etd"`
	ETA              string  `json:"eta"`
	ClosingDate      string  `json:"closingDate"`
	Cntr20GPQty      int     `json:"cntr20gpQty"`
	Cntr40GPQty      int     `json:"cntr40gpQty"`
	Cntr40HCQty      int     `json:"cntr40hcQty"`
	CommodityDesc    string  `json:"commodityDesc"`
	GrossWeightKg    float64 `json:"grossWeightKg"`
	VolumeCBM        float64 `json:"volumeCbm"`
	Status           string  `json:"status"`
	Remark           string  `json:"remark"`
}

// TotalContainers sums the per-size container counts.
func (in BookingInput) TotalContainers() int {
	return in.Cntr20GPQty + in.Cntr40GPQty + in.Cntr40HCQty
}

func (b SeaBooking) ToRecord() sorting.Record {
	record := sorting.Record{
		"id":               b.ID,
		"bookingNo":        b.BookingNo,
		"bookingType":      b.BookingType,
		"serviceType":      b.ServiceType,
		"incoterms":        b.Incoterms,
		"paymentTerms":     b.PaymentTerms,
		"shipperName":      b.ShipperName,
		"consigneeName":    b.ConsigneeName,
		"notifyName":       b.NotifyName,
		"carrierBookingNo": b.CarrierBookingNo,
		"carrierId":        nil,
		"carrierName":      nilIfEmpty(b.CarrierName),
		"vesselName":       nilIfEmpty(b.VesselName),
		"voyageNo":         nilIfEmpty(b.VoyageNo),
		"polPortCode":      nilIfEmpty(b.POLPortCode),
		"podPortCode":      nilIfEmpty(b.PODPortCode),
		"etd":              formatDate(b.ETD),
		"eta":              formatDate(b.ETA),
		"closingDate":      formatDate(b.ClosingDate),
		"cntr20gpQty":      b.Cntr20GPQty,
		"cntr40gpQty":      b.Cntr40GPQty,
		"cntr40hcQty":      b.Cntr40HCQty,
		"totalCntrQty":     b.TotalCntrQty,
		"commodityDesc":    b.CommodityDesc,
		"grossWeightKg":    b.GrossWeightKg,
		"volumeCbm":        b.VolumeCBM,
		"status":           b.Status,
		"remark":           b.Remark,
		"createdBy":        b.CreatedBy,
		"createdAt":        b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.CarrierID != nil {
		record["carrierId"] = *b.CarrierID
	}
	return record
}

// formatDate renders d as YYYY-MM-DD. Absent dates are nil so they sort last.
func formatDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(dateLayout)
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ParseDate parses an optional YYYY-MM-DD value. Empty input yields nil.
func ParseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Records converts any slice of record-convertible values.
func Records[T interface{ ToRecord() sorting.Record }](items []T) []sorting.Record {
	out := make([]sorting.Record, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToRecord())
	}
	return out
}
