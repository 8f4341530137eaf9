package repository

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

type RestaurantRepository struct {
	DB *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: db}
}

func (r *RestaurantRepository) FindRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var rest models.Restaurant
	if err := r.DB.WithContext(ctx).First(&rest, id).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

// FindBranch loads a branch together with its restaurant
func (r *RestaurantRepository) FindBranch(ctx context.Context, id uint) (*models.Branch, error) {
	var b models.Branch
	if err := r.DB.WithContext(ctx).Preload("Restaurant").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *RestaurantRepository) ListBranches(ctx context.Context, restaurantID uint) ([]models.Branch, error) {
	branches := []models.Branch{}
	err := r.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("id asc").
		Find(&branches).Error
	return branches, err
}

// BranchIDsManagedBy returns the branches whose manager set contains userID
func (r *RestaurantRepository) BranchIDsManagedBy(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Table("branch_managers").
		Where("user_id = ?", userID).
		Pluck("branch_id", &ids).Error
	return ids, err
}
