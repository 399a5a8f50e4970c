package ridership

import (
	"testing"
	"time"
)

func TestNormalizeReadings(t *testing.T) {
	raw := []RawReading{
		{
			ControlArea: " A002",
			Unit:        "R051 ",
			SCP:         "02-00-00",
			Station:     " 59 ST ",
			LineName:    "NQR456W ",
			Division:    "BMT",
			Date:        "06/15/2019",
			Time:        "04:00:00",
			Description: "REGULAR",
			Entries:     "7124325",
			Exits:       " 2392871",
		},
	}

	readings, malformed := NormalizeReadings(raw, time.UTC)

	if malformed != 0 {
		t.Fatalf("expected 0 malformed, got %d", malformed)
	}
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}

	reading := readings[0]

	if reading.Turnstile != "A002_R051_02-00-00_59 ST" {
		t.Errorf("unexpected turnstile identity %q", reading.Turnstile)
	}
	if reading.Station != "59 ST" {
		t.Errorf("station not trimmed: %q", reading.Station)
	}
	if reading.LineName != "NQR456W" {
		t.Errorf("line name not trimmed: %q", reading.LineName)
	}

	want := time.Date(2019, 6, 15, 4, 0, 0, 0, time.UTC)
	if !reading.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, reading.Timestamp)
	}

	if reading.Entries != 7124325 {
		t.Errorf("expected entries 7124325, got %d", reading.Entries)
	}
	if reading.Exits != 2392871 {
		t.Errorf("expected exits 2392871, got %d", reading.Exits)
	}
}

func TestNormalizeReadingsDropsMalformed(t *testing.T) {
	good := RawReading{
		ControlArea: "A002", Unit: "R051", SCP: "02-00-00", Station: "59 ST",
		Date: "06/15/2019", Time: "04:00:00", Entries: "100", Exits: "50",
	}

	tests := []struct {
		name   string
		mutate func(*RawReading)
	}{
		{
			name:   "blank station",
			mutate: func(r *RawReading) { r.Station = "   " },
		},
		{
			name:   "blank scp",
			mutate: func(r *RawReading) { r.SCP = "" },
		},
		{
			name:   "unparseable date",
			mutate: func(r *RawReading) { r.Date = "2019-06-15" },
		},
		{
			name:   "unparseable time",
			mutate: func(r *RawReading) { r.Time = "4am" },
		},
		{
			name:   "non-numeric entries",
			mutate: func(r *RawReading) { r.Entries = "n/a" },
		},
		{
			name:   "non-numeric exits",
			mutate: func(r *RawReading) { r.Exits = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := good
			tt.mutate(&bad)

			readings, malformed := NormalizeReadings([]RawReading{good, bad}, time.UTC)

			if malformed != 1 {
				t.Errorf("expected 1 malformed, got %d", malformed)
			}
			if len(readings) != 1 {
				t.Errorf("expected 1 surviving reading, got %d", len(readings))
			}
		})
	}
}

func TestNormalizeReadingsDefaultLocation(t *testing.T) {
	raw := []RawReading{{
		ControlArea: "A002", Unit: "R051", SCP: "02-00-00", Station: "59 ST",
		Date: "06/15/2019", Time: "04:00:00", Entries: "1", Exits: "1",
	}}

	readings, _ := NormalizeReadings(raw, nil)
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}

	if readings[0].Timestamp.Location() == time.UTC && DefaultLocation() != time.UTC {
		t.Error("expected nil location to select the default location")
	}
}
