package dto

type MigrationStatus string

const (
	MigrationMigrated       MigrationStatus = "migrated"
	MigrationAlreadyCurrent MigrationStatus = "already_current"
	MigrationUnreadable     MigrationStatus = "unreadable"
)

type MigrationResult struct {
	Status MigrationStatus `json:"status"`
	From   int             `json:"from"`
	To     int             `json:"to"`
	Reason string          `json:"reason,omitempty"`
}

type ImportResult struct {
	Version   int             `json:"version"`
	Positions int             `json:"positions"`
	Accounts  int             `json:"accounts"`
	Reviews   int             `json:"reviews"`
	Migration MigrationResult `json:"migration"`
}
