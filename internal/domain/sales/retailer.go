package sales

import (
	"github.com/stockadoodle/backend/internal/domain/shared"
)

// Retailer is a read model of the retailer roster. Account management is
// owned by an external collaborator; the sale-posting core only checks that
// a retailer exists and is active.
type Retailer struct {
	shared.BaseEntity
	Name   string `gorm:"size:255;not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Retailer) TableName() string {
	return "retailers"
}
