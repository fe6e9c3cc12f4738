package agora

import "time"

// NowFunc returns the current time. Tests swap it out for a fixed clock.
var NowFunc func() time.Time = time.Now

// An Item is a ranked piece of content belonging to a Group.
//
// Score, Upvotes, Downvotes and CommentsCount are maintained by the
// ingestion pipeline; this kernel only reads them. Rank and RankedAt are
// derived data owned by the rank maintainer and must never be written from
// anywhere else.
type Item struct {
	ID            string    `db:"id"`
	GroupID       string    `db:"group_id"`
	Score         int64     `db:"score"`
	Upvotes       int64     `db:"upvotes"`
	Downvotes     int64     `db:"downvotes"`
	CommentsCount int64     `db:"comments_count"`
	Published     time.Time `db:"published"`
	Rank          float64   `db:"rank"`
	RankedAt      time.Time `db:"ranked_at"`
}

func NewItem(groupID string) *Item {
	return &Item{
		GroupID:   groupID,
		Published: NowFunc(),
	}
}

// Interactions returns the item's contribution to its group's monthly
// activity volume.
func (i *Item) Interactions() int64 {
	return i.Upvotes + i.Downvotes + i.CommentsCount
}
