package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over one injected gorm handle
type Store struct {
	DB          *gorm.DB
	Orders      *OrderRepository
	Restaurants *RestaurantRepository
	Menu        *MenuRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		DB:          db,
		Orders:      NewOrderRepository(db),
		Restaurants: NewRestaurantRepository(db),
		Menu:        NewMenuRepository(db),
	}
}

// Transaction runs fn inside a database transaction
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.DB.WithContext(ctx).Transaction(fn)
}
