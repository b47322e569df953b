package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBookingAdmission(t *testing.T) {
	before := testutil.ToFloat64(BookingAdmissionsTotal.WithLabelValues("admitted"))
	RecordBookingAdmission("admitted")
	after := testutil.ToFloat64(BookingAdmissionsTotal.WithLabelValues("admitted"))

	assert.Equal(t, before+1, after)
}

func TestRecordBookingAdmissionOutcomes(t *testing.T) {
	beforeFull := testutil.ToFloat64(BookingAdmissionsTotal.WithLabelValues("full"))
	RecordBookingAdmission("full")
	assert.Equal(t, beforeFull+1, testutil.ToFloat64(BookingAdmissionsTotal.WithLabelValues("full")))
}

func TestRecordInvoicePaid(t *testing.T) {
	before := testutil.ToFloat64(InvoicesPaidTotal)
	RecordInvoicePaid()
	assert.Equal(t, before+1, testutil.ToFloat64(InvoicesPaidTotal))
}

func TestRecordSessionsGenerated(t *testing.T) {
	before := testutil.ToFloat64(SessionsGeneratedTotal)
	RecordSessionsGenerated(12)
	assert.Equal(t, before+12, testutil.ToFloat64(SessionsGeneratedTotal))
}

func TestRecordPromotionApplied(t *testing.T) {
	before := testutil.ToFloat64(PromotionsAppliedTotal)
	RecordPromotionApplied()
	assert.Equal(t, before+1, testutil.ToFloat64(PromotionsAppliedTotal))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/plans", "200"))
	RecordHTTPRequest("GET", "/plans", "200", 0.05)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/plans", "200")))
}
