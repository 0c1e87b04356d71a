package model

import "github.com/google/uuid"

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

func (t TransactionType) Valid() bool {
	return t == TxIn || t == TxOut
}

// Transaction is a ledger entry. CreatedAt is the movement date.
// Entries are never updated; they are removed only with their product.
type Transaction struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product,omitempty"`
	Type      TransactionType `gorm:"type:varchar(3);not null" json:"type"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Note      string          `gorm:"type:text" json:"note"`

	// Actor. Cleared when the user is removed.
	UserID *uuid.UUID `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	User   *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`
}
