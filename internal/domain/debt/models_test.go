package debt

import "testing"

func TestHoursFromMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0"},
		{30, "0.5"},
		{60, "1"},
		{90, "1.5"},
		{50, "0.83"},
		{-30, "-0.5"},
	}
	for _, c := range cases {
		if got := HoursFromMinutes(c.minutes).String(); got != c.want {
			t.Fatalf("HoursFromMinutes(%d) = %s, want %s", c.minutes, got, c.want)
		}
	}
}
