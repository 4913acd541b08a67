package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentCard stores only non-sensitive card facts
type PaymentCard struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Last4       string    `gorm:"column:last4;type:varchar(4);not null" json:"last4"`
	CardType    string    `gorm:"type:varchar(20);not null" json:"card_type"`
	HolderName  string    `gorm:"type:varchar(255);not null" json:"holder_name"`
	ExpiryMonth int       `gorm:"not null" json:"expiry_month"`
	ExpiryYear  int       `gorm:"not null" json:"expiry_year"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentCard) TableName() string {
	return "payment_cards"
}
