package models

// Payment is a row of the payments table. ClientName refers to clients.name
// but the reference is not enforced by the store; the ledger keeps it
// consistent. ID only fixes insertion order.
type Payment struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	ClientName string `gorm:"type:text;not null;index"`
	Seller     string `gorm:"type:text;not null"`
	Date       string `gorm:"type:text;not null"`
	Money      uint32 `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }
