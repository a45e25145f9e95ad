package model

// AllowlistEntry is an address permitted to be confirmed. The table is
// seeded by the import command and read-only for the intake service.
type AllowlistEntry struct {
	BaseModel
	Address string `gorm:"not null;type:varchar(64);uniqueIndex:idx_unique_allowlist_address" json:"address"`
}

func (AllowlistEntry) TableName() string {
	return "allowlist_entries"
}

// ConfirmedAddress records a successful submission. created_at doubles as
// the confirmation time; rows are never updated or deleted.
type ConfirmedAddress struct {
	BaseModel
	Address string `gorm:"not null;type:varchar(64);uniqueIndex:idx_unique_confirmed_address" json:"address"`
}

func (ConfirmedAddress) TableName() string {
	return "confirmed_addresses"
}
