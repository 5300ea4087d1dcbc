package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBooking("booked")
	c.RecordBooking("booked")
	c.RecordBooking("conflict")
	c.RecordHTTP(201, 15*time.Millisecond)
	c.RecordHTTP(409, 5*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `clinic_bookings_total{outcome="booked"} 2`) {
		t.Errorf("missing booked counter in:\n%s", body)
	}
	if !strings.Contains(body, `clinic_bookings_total{outcome="conflict"} 1`) {
		t.Errorf("missing conflict counter in:\n%s", body)
	}
	if !strings.Contains(body, `clinic_http_status_total{status_code="201"} 1`) {
		t.Errorf("missing http status counter in:\n%s", body)
	}
}
