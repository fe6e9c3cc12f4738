package agora

import "time"

// A User record as far as this kernel is concerned: an identity holding a
// sort preference. Everything else about users lives in the main
// application.
type User struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	SortPreference SortPreference `db:"sort_preference"`
	CreatedAt      time.Time      `db:"created_at"`
}
