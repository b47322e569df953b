package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtendEnd(t *testing.T) {
	today := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Valid subscription extends from current expiry", func(t *testing.T) {
		currentEnd := today.AddDate(0, 0, 5)
		got := extendEnd(today, currentEnd, 30)
		assert.Equal(t, today.AddDate(0, 0, 35), got)
	})

	t.Run("Expired subscription restarts from now", func(t *testing.T) {
		currentEnd := today.AddDate(0, 0, -10)
		got := extendEnd(today, currentEnd, 30)
		assert.Equal(t, today.AddDate(0, 0, 30), got)
	})

	t.Run("Expiry exactly now extends from now", func(t *testing.T) {
		got := extendEnd(today, today, 30)
		assert.Equal(t, today.AddDate(0, 0, 30), got)
	})
}

func TestSubscriptionState(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		isActive bool
		endDate  time.Time
		want     SubscriptionState
	}{
		{"Pending payment", false, now, StatePendingPayment},
		{"Active with future expiry", true, now.AddDate(0, 0, 10), StateActive},
		{"Expired", true, now.AddDate(0, 0, -1), StateExpired},
		{"Expires this instant is still active", true, now, StateActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subscription{IsActive: tt.isActive, EndDate: tt.endDate}
			assert.Equal(t, tt.want, sub.State(now))
		})
	}
}
