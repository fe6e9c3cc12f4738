package agora

// A Group is a community that owns items and carries an aggregate activity
// level. InteractionsMonth approximates the total interactions (comments,
// upvotes, downvotes) on items published in the group over the trailing
// month; it is owned by the activity tracker and allowed to lag reality
// between refreshes.
type Group struct {
	ID                string `db:"id"`
	InteractionsMonth int64  `db:"interactions_month"`
}
