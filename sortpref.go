package agora

// SortPreference is a feed ordering strategy, held per user and once as the
// system default.
type SortPreference string

const (
	SortHot      SortPreference = "hot"
	SortTop      SortPreference = "top"
	SortNew      SortPreference = "new"
	SortOld      SortPreference = "old"
	SortBalanced SortPreference = "balanced"

	// SortScaled is retired. The constant stays so the migrator and rows
	// predating the retirement can still name it.
	SortScaled SortPreference = "scaled"
)

// Valid reports whether p belongs to the currently supported set. Retired
// values are not valid, even though rows may still hold them until their
// retirement has been applied.
func (p SortPreference) Valid() bool {
	switch p {
	case SortHot, SortTop, SortNew, SortOld, SortBalanced:
		return true
	}
	return false
}

// A Retirement maps a retired preference value to its surviving replacement.
type Retirement struct {
	Retired     SortPreference
	Replacement SortPreference
}

// Retirements is the fixed table of retired preference values. Replacements
// are picked by hand for semantic proximity, never computed at runtime.
var Retirements = []Retirement{
	{Retired: SortScaled, Replacement: SortHot},
}

// MigrationStatus is where a retirement stands: declared but not started,
// partway through rewriting rows, or fully applied.
type MigrationStatus string

const (
	MigrationActive    MigrationStatus = "active"
	MigrationRewriting MigrationStatus = "rewriting"
	MigrationRetired   MigrationStatus = "retired"
)
