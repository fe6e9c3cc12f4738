// Package ranking implements the balanced rank function used to order
// feeds. Ranks blend raw score, power-law decay over the item's age and a
// normalization by the owning group's monthly activity, so a modest post in
// a quiet group can outrank a popular post in a busy one.
package ranking

import (
	"math"
	"time"

	"github.com/agorafeed/agora"
)

const (
	// gravity controls how fast an item falls as it ages.
	gravity = 1.8

	// timebaseHours flattens the curve for very young items so an early
	// burst of votes doesn't pin them to the top.
	timebaseHours = 2.0

	// scoreOffset keeps the numerator defined for mildly negative scores.
	scoreOffset = 3

	// scale lifts ranks into a range comfortable to eyeball in the database.
	scale = 10000.0

	// Floor is the smallest rank ever returned. Ranks stay strictly
	// positive so ordering and any logarithmic downstream use remain
	// well-defined.
	Floor = 0.0001
)

// Rank computes the balanced rank of an item at the given evaluation time.
//
//	decayed = scale * log10(max(1, score+3)) / (ageHours+2)^1.8
//	rank    = decayed / ln(groupInteractionsMonth + 2)
//
// The divisor is ln((interactions+1)+1): monotone in group activity and
// safely above zero for dormant or freshly created groups. Pure and
// deterministic; identical inputs always yield the identical output.
func Rank(score int64, published time.Time, groupInteractionsMonth int64, now time.Time) (float64, error) {
	if groupInteractionsMonth < 0 {
		return 0, agora.InvalidInput("negative group interactions: %d", groupInteractionsMonth)
	}
	if published.IsZero() || now.IsZero() {
		return 0, agora.InvalidInput("zero timestamp: published=%v now=%v", published, now)
	}

	hours := now.Sub(published).Hours()
	if hours < 0 {
		// Publisher clock ahead of ours; treat the item as brand new.
		hours = 0
	}

	decayed := scale * math.Log10(math.Max(1, float64(score+scoreOffset))) /
		math.Pow(hours+timebaseHours, gravity)

	r := decayed / math.Log(float64(groupInteractionsMonth)+2)
	if r < Floor {
		return Floor, nil
	}

	return r, nil
}
