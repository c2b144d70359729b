package matching_test

import (
	"reflect"
	"testing"

	"github.com/sportsbuddy/sportsbuddy/internal/app/matching"
)

func TestHasSportInterest(t *testing.T) {
	tests := []struct {
		name       string
		eventSport string
		sports     []string
		want       bool
	}{
		{"exact", "Tennis", []string{"Tennis"}, true},
		{"case and whitespace insensitive", "Football", []string{" football ", "cricket"}, true},
		{"no match", "Football", []string{"cricket"}, false},
		{"empty event sport", "", []string{"cricket"}, false},
		{"empty list", "Tennis", nil, false},
		{"empty entries skipped", "Tennis", []string{"", "  "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matching.HasSportInterest(tt.eventSport, tt.sports); got != tt.want {
				t.Errorf("HasSportInterest(%q, %v) = %v, want %v", tt.eventSport, tt.sports, got, tt.want)
			}
		})
	}
}

func TestCityMatch(t *testing.T) {
	if !matching.CityMatch("Mumbai", " mumbai ") {
		t.Error("expected case/whitespace-insensitive city match")
	}
	if matching.CityMatch("", "Mumbai") {
		t.Error("empty event city must not match")
	}
	if matching.CityMatch("Mumbai", "") {
		t.Error("empty candidate city must not match")
	}
	if matching.CityMatch("Pune", "Nagpur") {
		t.Error("different cities must not match")
	}
}

func TestStarMatch(t *testing.T) {
	if !matching.StarMatch("Football", "Mumbai", []string{"football", "cricket"}, "mumbai") {
		t.Error("expected star match for sport+city")
	}
	// Sport mismatch: no star, but the city still matches on its own.
	if matching.StarMatch("Football", "Mumbai", []string{"cricket"}, "Mumbai") {
		t.Error("sport mismatch must not star-match")
	}
	if !matching.CityMatch("Mumbai", "Mumbai") {
		t.Error("city should still match independently")
	}
}

func TestMutualSportInterests(t *testing.T) {
	tests := []struct {
		name      string
		creator   []string
		candidate []string
		want      []string
	}{
		{"creator order kept", []string{"Tennis", "Chess", "Cricket"}, []string{"cricket", "tennis"}, []string{"Tennis", "Cricket"}},
		{"dedup case-insensitively", []string{"Tennis", "tennis"}, []string{"TENNIS"}, []string{"Tennis"}},
		{"no overlap", []string{"Chess"}, []string{"Tennis"}, nil},
		{"both empty", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matching.MutualSportInterests(tt.creator, tt.candidate)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MutualSportInterests(%v, %v) = %v, want %v", tt.creator, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	// Event{sport: Tennis, city: Pune} against the four canonical candidates.
	candidates := []matching.Candidate{
		{Sports: []string{"Tennis"}, City: "Pune"},   // A: star + sport + city
		{Sports: []string{"Tennis"}, City: "Nagpur"}, // B: sport only
		{Sports: []string{"Chess"}, City: "Pune"},    // C: city only
		{Sports: []string{"Chess"}, City: "Nagpur"},  // D: not matched
	}

	b := matching.Categorize("Tennis", "Pune", candidates)

	if !reflect.DeepEqual(b.Star, []int{0}) {
		t.Errorf("Star = %v, want [0]", b.Star)
	}
	if !reflect.DeepEqual(b.Sport, []int{0, 1}) {
		t.Errorf("Sport = %v, want [0 1]", b.Sport)
	}
	if !reflect.DeepEqual(b.City, []int{0, 2}) {
		t.Errorf("City = %v, want [0 2]", b.City)
	}
	if !reflect.DeepEqual(b.NotMatched, []int{3}) {
		t.Errorf("NotMatched = %v, want [3]", b.NotMatched)
	}
}

func TestCategorizeExclusivity(t *testing.T) {
	b := matching.Categorize("Tennis", "Pune", []matching.Candidate{
		{Sports: []string{"Chess"}, City: "Nagpur"},
	})
	if len(b.NotMatched) != 1 {
		t.Fatalf("expected candidate in NotMatched, got %v", b.NotMatched)
	}
	if len(b.Star)+len(b.Sport)+len(b.City) != 0 {
		t.Error("not-matched candidate must not appear in any other bucket")
	}

	b = matching.Categorize("Tennis", "Pune", []matching.Candidate{
		{Sports: []string{"tennis"}, City: "pune"},
	})
	if len(b.NotMatched) != 0 {
		t.Error("a matching candidate must never appear in NotMatched")
	}
	if len(b.Star) != 1 || len(b.Sport) != 1 || len(b.City) != 1 {
		t.Errorf("star candidate should appear in all three match buckets: %+v", b)
	}
}
