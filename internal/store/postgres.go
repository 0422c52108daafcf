package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) ListCarriers(ctx context.Context) ([]Carrier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, carrier_type, created_at
		FROM carriers
		WHERE use_yn = 'Y' AND del_yn = 'N'
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	defer rows.Close()

	var items []Carrier
	for rows.Next() {
		var item Carrier
		if err := rows.Scan(&item.ID, &item.Code, &item.Name, &item.CarrierType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListPorts returns active ports. When the table cannot be read the built-in
// port list is returned along with the read error.
func (s *PostgresStore) ListPorts(ctx context.Context) ([]Port, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, country_code, port_type
		FROM ports
		WHERE use_yn = 'Y'
		ORDER BY code
	`)
	if err != nil {
		return DefaultPorts(), fmt.Errorf("list ports: %w", err)
	}
	defer rows.Close()

	var items []Port
	for rows.Next() {
		var item Port
		if err := rows.Scan(&item.Code, &item.Name, &item.CountryCode, &item.PortType); err != nil {
			return DefaultPorts(), fmt.Errorf("scan port: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return DefaultPorts(), fmt.Errorf("list ports: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, customer_type, created_at
		FROM customers
		WHERE use_yn = 'Y'
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var items []Customer
	for rows.Next() {
		var item Customer
		if err := rows.Scan(&item.ID, &item.Code, &item.Name, &item.CustomerType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const bookingColumns = `
	b.id, b.booking_no, b.booking_type, b.service_type, b.incoterms, b.payment_terms,
	b.shipper_name, b.consignee_name, b.notify_name, b.carrier_booking_no,
	b.carrier_id, COALESCE(c.name, ''), b.vessel_name, b.voyage_no,
	b.pol_port_code, b.pod_port_code, b.etd, b.eta, b.closing_date,
	b.cntr_20gp_qty, b.cntr_40gp_qty, b.cntr_40hc_qty, b.total_cntr_qty,
	b.commodity_desc, b.gross_weight_kg::float8, b.volume_cbm::float8,
	b.status, b.remark, b.created_by, b.created_at, b.updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (SeaBooking, error) {
	var (
		item      SeaBooking
		carrierID sql.NullInt64
		etd       sql.NullTime
		eta       sql.NullTime
		closing   sql.NullTime
	)
	err := row.Scan(
		&item.ID, &item.BookingNo, &item.BookingType, &item.ServiceType, &item.Incoterms, &item.PaymentTerms,
		&item.ShipperName, &item.ConsigneeName, &item.NotifyName, &item.CarrierBookingNo,
		&carrierID, &item.CarrierName, &item.VesselName, &item.VoyageNo,
		&item.POLPortCode, &item.PODPortCode, &etd, &eta, &closing,
		&item.Cntr20GPQty, &item.Cntr40GPQty, &item.Cntr40HCQty, &item.TotalCntrQty,
		&item.CommodityDesc, &item.GrossWeightKg, &item.VolumeCBM,
		&item.Status, &item.Remark, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return SeaBooking{}, err
	}
	if carrierID.Valid {
		item.CarrierID = &carrierID.Int64
	}
	item.ETD = nullTime(etd)
	item.ETA = nullTime(eta)
	item.ClosingDate = nullTime(closing)
	return item, nil
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func (s *PostgresStore) ListSeaBookings(ctx context.Context) ([]SeaBooking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM sea_bookings b
		LEFT JOIN carriers c ON c.id = b.carrier_id
		WHERE b.deleted_at IS NULL
		ORDER BY b.created_at DESC, b.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sea bookings: %w", err)
	}
	defer rows.Close()

	var items []SeaBooking
	for rows.Next() {
		item, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sea booking: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetSeaBooking(ctx context.Context, id int64) (SeaBooking, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM sea_bookings b
		LEFT JOIN carriers c ON c.id = b.carrier_id
		WHERE b.id = $1 AND b.deleted_at IS NULL
	`, id)
	item, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SeaBooking{}, ErrNotFound
	}
	if err != nil {
		return SeaBooking{}, fmt.Errorf("get sea booking: %w", err)
	}
	return item, nil
}

// CreateSeaBooking numbers the booking SB-<year>-<NNNN> from the count of
// bookings already issued that year and inserts it.
func (s *PostgresStore) CreateSeaBooking(ctx context.Context, in BookingInput, createdBy string) (SeaBooking, error) {
	dates, err := parseBookingDates(in)
	if err != nil {
		return SeaBooking{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeaBooking{}, fmt.Errorf("begin create booking: %w", err)
	}
	defer tx.Rollback()

	year := s.now().Year()
	// Serialises numbering for the year across concurrent creators.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(year)); err != nil {
		return SeaBooking{}, fmt.Errorf("lock booking numbers: %w", err)
	}
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sea_bookings WHERE booking_no LIKE $1`,
		fmt.Sprintf("SB-%d-%%", year),
	).Scan(&count); err != nil {
		return SeaBooking{}, fmt.Errorf("count bookings: %w", err)
	}
	bookingNo := BookingNumber(year, count+1)

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sea_bookings (
			booking_no, booking_type, service_type, incoterms, payment_terms,
			shipper_name, consignee_name, notify_name, carrier_booking_no, carrier_id,
			vessel_name, voyage_no, pol_port_code, pod_port_code, etd, eta, closing_date,
			cntr_20gp_qty, cntr_40gp_qty, cntr_40hc_qty, total_cntr_qty,
			commodity_desc, gross_weight_kg, volume_cbm, status, remark, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		RETURNING id
	`,
		bookingNo, orDefault(in.BookingType, "EXPORT"), orDefault(in.ServiceType, "CY_TO_CY"),
		orDefault(in.Incoterms, "FOB"), orDefault(in.PaymentTerms, "PREPAID"),
		in.ShipperName, in.ConsigneeName, in.NotifyName, in.CarrierBookingNo, in.CarrierID,
		in.VesselName, in.VoyageNo, in.POLPortCode, in.PODPortCode, dates.etd, dates.eta, dates.closing,
		in.Cntr20GPQty, in.Cntr40GPQty, in.Cntr40HCQty, in.TotalContainers(),
		in.CommodityDesc, in.GrossWeightKg, in.VolumeCBM, orDefault(in.Status, "DRAFT"), in.Remark,
		orDefault(createdBy, "admin"),
	).Scan(&id)
	if err != nil {
		return SeaBooking{}, fmt.Errorf("insert sea booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return SeaBooking{}, fmt.Errorf("commit create booking: %w", err)
	}
	return s.GetSeaBooking(ctx, id)
}

func (s *PostgresStore) UpdateSeaBooking(ctx context.Context, id int64, in BookingInput) (SeaBooking, error) {
	dates, err := parseBookingDates(in)
	if err != nil {
		return SeaBooking{}, err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE sea_bookings SET
			booking_type = $2, service_type = $3, incoterms = $4, payment_terms = $5,
			shipper_name = $6, consignee_name = $7, notify_name = $8, carrier_booking_no = $9,
			carrier_id = $10, vessel_name = $11, voyage_no = $12, pol_port_code = $13,
			pod_port_code = $14, etd = $15, eta = $16, closing_date = $17,
			cntr_20gp_qty = $18, cntr_40gp_qty = $19, cntr_40hc_qty = $20, total_cntr_qty = $21,
			commodity_desc = $22, gross_weight_kg = $23, volume_cbm = $24, status = $25,
			remark = $26, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`,
		id, orDefault(in.BookingType, "EXPORT"), orDefault(in.ServiceType, "CY_TO_CY"),
		orDefault(in.Incoterms, "FOB"), orDefault(in.PaymentTerms, "PREPAID"),
		in.ShipperName, in.ConsigneeName, in.NotifyName, in.CarrierBookingNo,
		in.CarrierID, in.VesselName, in.VoyageNo, in.POLPortCode,
		in.PODPortCode, dates.etd, dates.eta, dates.closing,
		in.Cntr20GPQty, in.Cntr40GPQty, in.Cntr40HCQty, in.TotalContainers(),
		in.CommodityDesc, in.GrossWeightKg, in.VolumeCBM, orDefault(in.Status, "DRAFT"),
		in.Remark,
	)
	if err != nil {
		return SeaBooking{}, fmt.Errorf("update sea booking: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return SeaBooking{}, ErrNotFound
	}
	return s.GetSeaBooking(ctx, id)
}

// DeleteSeaBooking soft-deletes the booking.
func (s *PostgresStore) DeleteSeaBooking(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sea_bookings SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("delete sea booking: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchSeaBookings matches query against booking number, vessel, shipper and
// consignee with ILIKE.
func (s *PostgresStore) SearchSeaBookings(ctx context.Context, query string, limit, offset int) ([]SeaBooking, int, error) {
	pattern := "%" + escapeLike(query) + "%"
	const where = `
		WHERE b.deleted_at IS NULL AND (
			b.booking_no ILIKE $1 OR b.vessel_name ILIKE $1 OR
			b.shipper_name ILIKE $1 OR b.consignee_name ILIKE $1
		)
	`
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sea_bookings b`+where, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM sea_bookings b
		LEFT JOIN carriers c ON c.id = b.carrier_id
	`+where+`
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search sea bookings: %w", err)
	}
	defer rows.Close()

	var items []SeaBooking
	for rows.Next() {
		item, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan search result: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// BookingNumber formats the sequence-th booking of year.
func BookingNumber(year, sequence int) string {
	return fmt.Sprintf("SB-%d-%04d", year, sequence)
}

type bookingDates struct {
	etd, eta, closing *time.Time
}

// InvalidInputError reports a malformed booking field.
type InvalidInputError struct {
	Field string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

func parseBookingDates(in BookingInput) (bookingDates, error) {
	var out bookingDates
	var err error
	if out.etd, err = ParseDate(in.ETD); err != nil {
		return out, &InvalidInputError{Field: "etd", Err: err}
	}
	if out.eta, err = ParseDate(in.ETA); err != nil {
		return out, &InvalidInputError{Field: "eta", Err: err}
	}
	if out.closing, err = ParseDate(in.ClosingDate); err != nil {
		return out, &InvalidInputError{Field: "closingDate", Err: err}
	}
	return out, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
