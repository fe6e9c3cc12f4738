package ranking

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/agorafeed/agora"
)

func TestRankIsAlwaysPositive(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")

	cases := []struct {
		score        int64
		ageHours     int64
		interactions int64
	}{
		{score: 0, ageHours: 0, interactions: 0},
		{score: -50, ageHours: 4, interactions: 100},
		{score: 10, ageHours: 24 * 365, interactions: 0},
		{score: 1000, ageHours: 1, interactions: 1_000_000},
	}

	for _, tc := range cases {
		published := now.Add(-time.Duration(tc.ageHours) * time.Hour)
		r, err := Rank(tc.score, published, tc.interactions, now)
		c.Assert(err, qt.IsNil)
		c.Assert(r > 0, qt.IsTrue, qt.Commentf("rank(%d, -%dh, %d) = %f", tc.score, tc.ageHours, tc.interactions, r))
	}
}

func TestRankMonotoneInScore(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")
	published := now.Add(-4 * time.Hour)

	prev := 0.0
	for _, score := range []int64{-10, -2, 0, 1, 5, 10, 100, 10_000} {
		r, err := Rank(score, published, 50, now)
		c.Assert(err, qt.IsNil)
		c.Assert(r >= prev, qt.IsTrue, qt.Commentf("score %d ranked %f, below %f", score, r, prev))
		prev = r
	}
}

func TestRankDecaysWithAge(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")

	prev := 0.0
	for _, ageHours := range []int64{24 * 90, 24 * 30, 48, 12, 2, 0} {
		published := now.Add(-time.Duration(ageHours) * time.Hour)
		r, err := Rank(10, published, 50, now)
		c.Assert(err, qt.IsNil)
		c.Assert(r >= prev, qt.IsTrue, qt.Commentf("age %dh ranked %f, below %f", ageHours, r, prev))
		prev = r
	}
}

func TestRankNormalizedByGroupActivity(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")
	published := now.Add(-4 * time.Hour)

	quiet, err := Rank(100, published, 0, now)
	c.Assert(err, qt.IsNil)
	busy, err := Rank(100, published, 10_000, now)
	c.Assert(err, qt.IsNil)

	c.Assert(busy < quiet, qt.IsTrue,
		qt.Commentf("identical post should rank lower in a busy group: busy=%f quiet=%f", busy, quiet))

	prev := quiet
	for _, interactions := range []int64{1, 10, 500, 10_000} {
		r, err := Rank(100, published, interactions, now)
		c.Assert(err, qt.IsNil)
		c.Assert(r <= prev, qt.IsTrue, qt.Commentf("%d interactions ranked %f, above %f", interactions, r, prev))
		prev = r
	}
}

func TestRankFreshBeatsMonthOld(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")

	fresh, err := Rank(10, now, 0, now)
	c.Assert(err, qt.IsNil)
	old, err := Rank(10, now.Add(-30*24*time.Hour), 0, now)
	c.Assert(err, qt.IsNil)

	c.Assert(fresh >= Floor, qt.IsTrue)
	c.Assert(fresh > old, qt.IsTrue, qt.Commentf("fresh=%f old=%f", fresh, old))
}

func TestRankFloor(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")

	// score+offset collapses the numerator to log10(1) = 0.
	r, err := Rank(-5, now.Add(-time.Hour), 40, now)
	c.Assert(err, qt.IsNil)
	c.Assert(r, qt.Equals, Floor)
}

func TestRankFuturePublicationClamped(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")

	future, err := Rank(10, now.Add(2*time.Hour), 0, now)
	c.Assert(err, qt.IsNil)
	fresh, err := Rank(10, now, 0, now)
	c.Assert(err, qt.IsNil)

	c.Assert(future, qt.Equals, fresh)
}

func TestRankDeterministic(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")
	published := now.Add(-36 * time.Hour)

	a, err := Rank(42, published, 1234, now)
	c.Assert(err, qt.IsNil)
	b, err := Rank(42, published, 1234, now)
	c.Assert(err, qt.IsNil)

	c.Assert(a, qt.Equals, b)
}

func TestRankInvalidInput(t *testing.T) {
	c := qt.New(t)

	now, _ := time.Parse(time.RFC3339, "2019-10-06T22:00:00Z")

	_, err := Rank(10, now, -1, now)
	c.Assert(err, qt.ErrorAs, new(*agora.InvalidInputError))

	_, err = Rank(10, time.Time{}, 0, now)
	c.Assert(err, qt.ErrorAs, new(*agora.InvalidInputError))

	_, err = Rank(10, now, 0, time.Time{})
	c.Assert(err, qt.ErrorAs, new(*agora.InvalidInputError))
}
