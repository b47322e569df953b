package booking

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"gymflow/internal/apperr"
)

// fixedService returns canned results so handler tests can exercise the
// HTTP status mapping without a database.
type fixedService struct {
	Service
	booking   *Booking
	bookErr   error
	cancelErr error
}

func (s fixedService) BookSession(ctx context.Context, userID, sessionID int) (*Booking, error) {
	return s.booking, s.bookErr
}

func (s fixedService) CancelBooking(ctx context.Context, userID, bookingID int) error {
	return s.cancelErr
}

func newHandlerRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", 10)
		c.Set("user_email", "member@test.com")
		c.Next()
	})

	handler := NewHandlerWithService(svc, nil, nil)
	router.POST("/bookings", handler.BookSession)
	router.DELETE("/bookings/:bookingID", handler.CancelBooking)
	return router
}

func TestBookSessionHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"full session", apperr.New(apperr.KindFull, "session is at capacity"), http.StatusConflict},
		{"duplicate booking", apperr.New(apperr.KindConflict, "already booked"), http.StatusConflict},
		{"no entitlement", apperr.New(apperr.KindForbidden, "no valid membership"), http.StatusForbidden},
		{"missing session", apperr.New(apperr.KindNotFound, "class session not found"), http.StatusNotFound},
		{"past session", apperr.New(apperr.KindInvalidState, "session has already started"), http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newHandlerRouter(fixedService{bookErr: tc.err})

			req := httptest.NewRequest("POST", "/bookings", bytes.NewBufferString(`{"class_session_id": 7}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestBookSessionHandler_Created(t *testing.T) {
	booked := &Booking{ID: 1, UserID: 10, ClassSessionID: 7, Status: StatusBooked}
	router := newHandlerRouter(fixedService{booking: booked})

	req := httptest.NewRequest("POST", "/bookings", bytes.NewBufferString(`{"class_session_id": 7}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"booked"`)
}

func TestBookSessionHandler_RejectsBadJSON(t *testing.T) {
	router := newHandlerRouter(fixedService{})

	req := httptest.NewRequest("POST", "/bookings", bytes.NewBufferString(`{"class_session_id": `))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelBookingHandler_Forbidden(t *testing.T) {
	router := newHandlerRouter(fixedService{cancelErr: apperr.New(apperr.KindForbidden, "can only cancel own bookings")})

	req := httptest.NewRequest("DELETE", "/bookings/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelBookingHandler_InvalidID(t *testing.T) {
	router := newHandlerRouter(fixedService{})

	req := httptest.NewRequest("DELETE", "/bookings/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
