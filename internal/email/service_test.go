package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"fms/api/internal/store"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "ops@example.com",
			},
			expected: false,
		},
		{
			name: "missing port",
			config: Config{
				Host: "smtp.example.com",
				From: "ops@example.com",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "ops@example.com",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingService(t *testing.T) (*Service, *capturedMail) {
	t.Helper()
	svc := NewService(Config{Host: "smtp.example.com", Port: "587", From: "ops@example.com", FromName: "물류팀"})
	captured := &capturedMail{}
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return nil
	}
	return svc, captured
}

func TestSendPreAlert(t *testing.T) {
	svc, captured := newCapturingService(t)
	etd := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	err := svc.SendPreAlert([]string{"agent@example.com"}, store.SeaBooking{
		BookingNo:     "SB-2026-0003",
		ShipperName:   "포스코",
		ConsigneeName: "DEF <Inc>",
		VesselName:    "EVER GOODS",
		VoyageNo:      "V.005W",
		ETD:           &etd,
		TotalCntrQty:  3,
	}, "서류 마감 확인 바랍니다")
	if err != nil {
		t.Fatalf("SendPreAlert failed: %v", err)
	}

	if captured.addr != "smtp.example.com:587" || captured.from != "ops@example.com" {
		t.Fatalf("unexpected envelope: %s %s", captured.addr, captured.from)
	}
	for _, want := range []string{
		"To: agent@example.com",
		"Subject: [Pre-Alert] SB-2026-0003 EVER GOODS V.005W",
		"From: =?UTF-8?q?",
		"SB-2026-0003",
		"ETD / ETA</th><td>2026-03-02 / 미정",
		"DEF &lt;Inc&gt;",
		"서류 마감 확인 바랍니다",
		"--boundary-fms--",
	} {
		if !strings.Contains(captured.msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSendRequiresConfigAndRecipients(t *testing.T) {
	if err := NewService(Config{}).SendHTMLEmail([]string{"a@example.com"}, "s", "t", "h"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	svc, _ := newCapturingService(t)
	if err := svc.SendHTMLEmail(nil, "s", "t", "h"); err == nil {
		t.Fatal("expected error without recipients")
	}
}

func TestSendErrorIsWrapped(t *testing.T) {
	svc, _ := newCapturingService(t)
	boom := errors.New("connection refused")
	svc.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	if err := svc.SendHTMLEmail([]string{"a@example.com"}, "s", "t", "h"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}
