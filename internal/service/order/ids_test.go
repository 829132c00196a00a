package order

import (
	"regexp"
	"testing"
	"time"
)

func TestNewOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^JDM\d{6}-\d{4}$`)
	now := time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		number := NewOrderNumber(now)
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected number %q", number)
		}
		if number[:9] != "JDM250109" {
			t.Fatalf("unexpected date part in %q", number)
		}
	}
}

func TestNewOrderIDFormat(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewOrderID(now)
	if !regexp.MustCompile(`^order_1700000000123_[0-9a-z]{9}$`).MatchString(id) {
		t.Fatalf("unexpected id %q", id)
	}
	if NewOrderID(now) == id {
		t.Fatal("ids generated in the same millisecond must differ")
	}
}
