package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fms/api/internal/sorting"
)

func TestSeaBookingToRecordLeavesAbsentValuesNil(t *testing.T) {
	etd := time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)
	booking := SeaBooking{
		ID:           7,
		BookingNo:    "SB-2026-0007",
		ShipperName:  "삼성전자",
		ETD:          &etd,
		TotalCntrQty: 3,
		CreatedAt:    etd,
	}

	record := booking.ToRecord()

	assert.Equal(t, "2026-01-25", record["etd"])
	assert.Nil(t, record["eta"])
	assert.Nil(t, record["vesselName"])
	assert.Nil(t, record["carrierId"])
	assert.Equal(t, 3, record["totalCntrQty"])
	assert.Equal(t, "삼성전자", record["shipperName"])
}

func TestBookingsSortByEtdWithMissingLast(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	bookings := []SeaBooking{
		{BookingNo: "SB-2026-0001", ETD: day(10)},
		{BookingNo: "SB-2026-0002"},
		{BookingNo: "SB-2026-0003", ETD: day(2)},
	}

	sorted := sorting.Sort(Records(bookings), sorting.State{Key: "etd", Direction: sorting.Descending})

	got := make([]any, 0, len(sorted))
	for _, r := range sorted {
		got = append(got, r["bookingNo"])
	}
	assert.Equal(t, []any{"SB-2026-0001", "SB-2026-0003", "SB-2026-0002"}, got)
}

func TestBookingNumber(t *testing.T) {
	assert.Equal(t, "SB-2026-0001", BookingNumber(2026, 1))
	assert.Equal(t, "SB-2026-0123", BookingNumber(2026, 123))
	assert.Equal(t, "SB-2026-12345", BookingNumber(2026, 12345))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDate("2026-03-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.March, got.Month())

	_, err = ParseDate("03/01/2026")
	assert.Error(t, err)
}

func TestParseBookingDatesNamesField(t *testing.T) {
	_, err := parseBookingDates(BookingInput{ETD: "2026-01-01", ETA: "bad"})

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "eta", invalid.Field)
}

func TestDefaultPortsReturnsCopy(t *testing.T) {
	ports := DefaultPorts()
	require.NotEmpty(t, ports)
	assert.Equal(t, "KRPUS", ports[0].Code)

	ports[0].Code = "XXXXX"
	assert.Equal(t, "KRPUS", DefaultPorts()[0].Code)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
	assert.Equal(t, "부산", escapeLike("부산"))
}

func TestInputTotalContainers(t *testing.T) {
	in := BookingInput{Cntr20GPQty: 2, Cntr40GPQty: 1, Cntr40HCQty: 4}
	assert.Equal(t, 7, in.TotalContainers())
}
