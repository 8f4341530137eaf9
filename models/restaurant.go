package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	AdminID   uint      `json:"adminId" gorm:"not null;index"`
	Admin     *User     `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
	Branches  []Branch  `json:"branches,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Branch is a physical outlet; its Managers set scopes BRANCH_MANAGER access.
type Branch struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	RestaurantID uint        `json:"restaurantId" gorm:"not null;index"`
	Restaurant   *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Name         string      `json:"name" gorm:"not null"`
	Address      string      `json:"address"`
	Managers     []User      `json:"managers,omitempty" gorm:"many2many:branch_managers"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type MenuItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	RestaurantID uint            `json:"restaurantId" gorm:"not null;index"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	IsAvailable  bool            `json:"isAvailable" gorm:"default:true"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// AddonGroup only exists for menu presentation; orders reference Addon rows directly.
type AddonGroup struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	RestaurantID uint    `json:"restaurantId" gorm:"not null;index"`
	Name         string  `json:"name" gorm:"not null"`
	Addons       []Addon `json:"items,omitempty" gorm:"foreignKey:AddonGroupID"`
}

type Addon struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	AddonGroupID uint            `json:"addonGroupId" gorm:"index"`
	Name         string          `json:"name" gorm:"not null"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}
