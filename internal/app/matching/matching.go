// internal/app/matching/matching.go
package matching

import "strings"

// Package matching categorizes join-request candidates for the event
// creator's triage view. All string comparison is case-insensitive and
// whitespace-trimmed. The classification is informational only; it never
// gates join or accept.

// Candidate is the profile slice the classifier needs: the candidate's
// sports-interest list and home city.
type Candidate struct {
	Sports []string
	City   string
}

// Buckets holds the triage categories for one event's candidate list.
// A candidate may appear in several of Star/Sport/City at once; NotMatched
// is mutually exclusive with the other three.
type Buckets struct {
	Star       []int // indexes into the input candidate slice
	Sport      []int
	City       []int
	NotMatched []int
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HasSportInterest reports whether eventSport equals at least one entry in
// candidateSports. An empty event sport never matches.
func HasSportInterest(eventSport string, candidateSports []string) bool {
	es := norm(eventSport)
	if es == "" {
		return false
	}
	for _, s := range candidateSports {
		if s != "" && norm(s) == es {
			return true
		}
	}
	return false
}

// CityMatch reports whether the two city names are the same. Empty on
// either side means no match.
func CityMatch(eventCity, candidateCity string) bool {
	ec, cc := norm(eventCity), norm(candidateCity)
	if ec == "" || cc == "" {
		return false
	}
	return ec == cc
}

// StarMatch reports a candidate matching both the event's sport and city.
func StarMatch(eventSport, eventCity string, candidateSports []string, candidateCity string) bool {
	return HasSportInterest(eventSport, candidateSports) && CityMatch(eventCity, candidateCity)
}

// MutualSportInterests returns the case-insensitive intersection of the two
// interest lists, in the creator's list order, deduplicated by
// case-insensitive comparison. Used for display only.
func MutualSportInterests(creatorSports, candidateSports []string) []string {
	var mutual []string
	seen := make(map[string]struct{})
	for _, cs := range creatorSports {
		key := norm(cs)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		for _, as := range candidateSports {
			if norm(as) == key {
				mutual = append(mutual, cs)
				seen[key] = struct{}{}
				break
			}
		}
	}
	return mutual
}

// Categorize buckets candidates against the event's sport and city.
// Stateless; re-run whenever the candidate list or the event changes.
func Categorize(eventSport, eventCity string, candidates []Candidate) Buckets {
	var b Buckets
	for i, c := range candidates {
		sport := HasSportInterest(eventSport, c.Sports)
		city := CityMatch(eventCity, c.City)
		if sport && city {
			b.Star = append(b.Star, i)
		}
		if sport {
			b.Sport = append(b.Sport, i)
		}
		if city {
			b.City = append(b.City, i)
		}
		if !sport && !city {
			b.NotMatched = append(b.NotMatched, i)
		}
	}
	return b
}
