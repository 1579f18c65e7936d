// Package rating computes Elo-style rating adjustments for finished matches.
package rating

import "math"

const (
	KFactor   = 32
	deviation = 400
)

// Standing is one participant's final placement in a match.
type Standing struct {
	UserID uint
	Rating int
	Rank   int
}

// ExpectedScore returns the probability that a player rated ra beats a
// player rated rb.
func ExpectedScore(ra, rb int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(rb-ra)/deviation))
}

// Deltas computes the rating adjustment for every participant. Each player
// is compared pairwise against all opponents; the per-opponent surprise
// (actual minus expected) is averaged, not summed, so larger matches do not
// produce outsized swings. For two players this is plain symmetric Elo.
func Deltas(standings []Standing) map[uint]int {
	deltas := make(map[uint]int, len(standings))
	if len(standings) < 2 {
		for _, s := range standings {
			deltas[s.UserID] = 0
		}
		return deltas
	}

	for _, p := range standings {
		var sum float64
		for _, o := range standings {
			if o.UserID == p.UserID {
				continue
			}
			actual := 0.0
			if p.Rank < o.Rank {
				actual = 1.0
			}
			sum += actual - ExpectedScore(p.Rating, o.Rating)
		}
		mean := sum / float64(len(standings)-1)
		deltas[p.UserID] = int(math.Round(KFactor * mean))
	}
	return deltas
}
