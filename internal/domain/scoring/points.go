// Package scoring converts one driver's race outcome into fantasy points.
package scoring

// Result is the per-driver scoring input, normalized from the provider
// payload. Position is nil when the driver was not classified; Retired is
// non-nil when the provider reported a retirement status.
type Result struct {
	Position   *int
	Retired    *string
	FastestLap bool
}

// positionAwards maps finishing positions 1-10 to their base award.
var positionAwards = map[int]int{
	1:  25,
	2:  18,
	3:  15,
	4:  12,
	5:  10,
	6:  8,
	7:  6,
	8:  4,
	9:  2,
	10: 1,
}

const (
	winBonus          = 10
	podiumBonus       = 5
	fastestLapBonus   = 5
	poorFinishPenalty = 2
	dnfPenalty        = 5
)

// Score is the fantasy point value of one result. Deterministic and total:
// every well-formed result maps to exactly one signed value. Captains get the
// doubling applied after every bonus and penalty.
func Score(r Result, isCaptain bool) int {
	points := 0

	if r.Position != nil {
		pos := *r.Position
		points += positionAwards[pos]
		if pos == 1 {
			points += winBonus
		}
		if pos <= 3 {
			points += podiumBonus
		}
		if pos > 15 {
			points -= poorFinishPenalty
		}
	}

	if r.FastestLap {
		points += fastestLapBonus
	}

	// DNF fires on either signal: a non-classified position or an explicit
	// retirement status. Additive with everything above.
	if r.Position == nil || r.Retired != nil {
		points -= dnfPenalty
	}

	if isCaptain {
		points *= 2
	}

	return points
}
