package agora

// ScoreChangeEvent is emitted by the ingestion pipeline when an item's score
// moved (a vote was cast or retracted).
type ScoreChangeEvent struct {
	ItemID string `json:"item_id"`
}

// InteractionEvent signals that an interaction (comment, upvote or
// downvote) occurred in a group.
type InteractionEvent struct {
	GroupID string `json:"group_id"`
}
