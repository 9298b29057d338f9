package models

// Client is a row of the clients table. ExpireDate holds a ledger timestamp
// in its text form.
type Client struct {
	Name       string  `gorm:"primaryKey;type:text"`
	ExpireDate string  `gorm:"type:text;not null"`
	Info       *string `gorm:"type:text"`
}

func (Client) TableName() string { return "clients" }
