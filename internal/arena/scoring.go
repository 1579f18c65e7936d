package arena

import "math"

const (
	basePoints  = 1000
	pointsDecay = 0.8
)

// PointsForRank maps a final placement to points: 1000 for first, then a
// 20% geometric decay per rank, floored. Unranked (0) and invalid ranks
// score nothing.
func PointsForRank(rank int) int {
	if rank < 1 {
		return 0
	}
	return int(math.Floor(basePoints * math.Pow(pointsDecay, float64(rank-1))))
}
