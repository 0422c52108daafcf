package app

import "strings"

// ScreenKind names a registration screen. Each kind returns to its own list page.
type ScreenKind string

const (
	KindDashboard    ScreenKind = "DASHBOARD"
	KindBookingSea   ScreenKind = "BOOKING_SEA"
	KindBookingAir   ScreenKind = "BOOKING_AIR"
	KindQuoteSea     ScreenKind = "QUOTE_SEA"
	KindQuoteAir     ScreenKind = "QUOTE_AIR"
	KindQuoteRequest ScreenKind = "QUOTE_REQUEST"
	KindScheduleSea  ScreenKind = "SCHEDULE_SEA"
	KindScheduleAir  ScreenKind = "SCHEDULE_AIR"
	KindImportBLSea  ScreenKind = "IMPORT_BL_SEA"
	KindImportBLAir  ScreenKind = "IMPORT_BL_AIR"
	KindSRSea        ScreenKind = "SR_SEA"
	KindSNSea        ScreenKind = "SN_SEA"
	KindCustomsSea   ScreenKind = "CUSTOMS_SEA"
	KindAMSSea       ScreenKind = "AMS_SEA"
	KindManifestSea  ScreenKind = "MANIFEST_SEA"
	KindShipment     ScreenKind = "SHIPMENT"
)

var listPaths = map[ScreenKind]string{
	KindDashboard:    "/",
	KindBookingSea:   "/logis/booking/sea",
	KindBookingAir:   "/logis/booking/air",
	KindQuoteSea:     "/logis/quote/sea",
	KindQuoteAir:     "/logis/quote/air",
	KindQuoteRequest: "/logis/quote/request",
	KindScheduleSea:  "/logis/schedule/sea",
	KindScheduleAir:  "/logis/schedule/air",
	KindImportBLSea:  "/logis/import-bl/sea",
	KindImportBLAir:  "/logis/import-bl/air",
	KindSRSea:        "/logis/sr/sea",
	KindSNSea:        "/logis/sn/sea",
	KindCustomsSea:   "/logis/customs/sea",
	KindAMSSea:       "/logis/ams/sea",
	KindManifestSea:  "/logis/manifest/sea",
	KindShipment:     "/logis/shipment",
}

// ListPath returns the list page a screen of kind returns to.
func ListPath(kind ScreenKind) (string, bool) {
	path, ok := listPaths[ScreenKind(strings.ToUpper(strings.TrimSpace(string(kind))))]
	return path, ok
}
