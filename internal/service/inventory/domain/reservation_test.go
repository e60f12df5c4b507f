// internal/service/inventory/domain/reservation_test.go
package domain

import (
	"testing"
	"time"
)

func TestExpiredAt(t *testing.T) {
	reservation := Reservation{Expiry: 1000}

	cases := []struct {
		name string
		now  int64
		want bool
	}{
		{"before expiry", 999, false},
		{"exactly at expiry", 1000, false},
		{"past expiry", 1001, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reservation.ExpiredAt(time.Unix(tc.now, 0)); got != tc.want {
				t.Errorf("ExpiredAt(%d) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if StateBlocked.IsTerminal() {
		t.Error("BLOCKED must not be terminal")
	}
	if !StateCommitted.IsTerminal() {
		t.Error("COMMITTED must be terminal")
	}
	if !StateExpired.IsTerminal() {
		t.Error("EXPIRED must be terminal")
	}
}
