package rate

import (
	"testing"
	"time"
)

func TestLimiterBurst(t *testing.T) {
	lim := NewLimiter(3, 1, Every(time.Hour))

	for i := 0; i < 3; i++ {
		if !lim.Check("1.2.3.4") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}

	if lim.Check("1.2.3.4") {
		t.Fatal("request beyond burst was allowed")
	}
}

func TestLimiterPerClient(t *testing.T) {
	lim := NewLimiter(1, 1, Every(time.Hour))

	if !lim.Check("10.0.0.1") {
		t.Fatal("first client denied")
	}
	if lim.Check("10.0.0.1") {
		t.Fatal("first client not throttled")
	}
	if !lim.Check("10.0.0.2") {
		t.Fatal("second client throttled by the first client's bucket")
	}
}

func TestLimiterRefill(t *testing.T) {
	lim := NewLimiter(1, 1, Every(10*time.Millisecond))

	if !lim.Check("refill") {
		t.Fatal("first request denied")
	}
	if lim.Check("refill") {
		t.Fatal("bucket did not empty")
	}

	time.Sleep(20 * time.Millisecond)

	if !lim.Check("refill") {
		t.Fatal("bucket did not refill")
	}
}
