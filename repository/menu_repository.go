package repository

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: db}
}

func (r *MenuRepository) FindMenuItems(ctx context.Context, ids []uint) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if len(ids) == 0 {
		return items, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *MenuRepository) FindAddons(ctx context.Context, ids []uint) ([]models.Addon, error) {
	addons := []models.Addon{}
	if len(ids) == 0 {
		return addons, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&addons).Error
	return addons, err
}

// ForeignAddonIDs returns the add-ons among ids whose group is not owned by restaurantID
func (r *MenuRepository) ForeignAddonIDs(ctx context.Context, restaurantID uint, ids []uint) ([]uint, error) {
	foreign := []uint{}
	if len(ids) == 0 {
		return foreign, nil
	}
	err := r.DB.WithContext(ctx).Model(&models.Addon{}).
		Joins("LEFT JOIN addon_groups ON addon_groups.id = addons.addon_group_id").
		Where("addons.id IN ?", ids).
		Where("addon_groups.restaurant_id IS NULL OR addon_groups.restaurant_id <> ?", restaurantID).
		Order("addons.id asc").
		Pluck("addons.id", &foreign).Error
	return foreign, err
}

// MenuForRestaurant returns the menu items and add-on groups of a restaurant
func (r *MenuRepository) MenuForRestaurant(ctx context.Context, restaurantID uint) ([]models.MenuItem, []models.AddonGroup, error) {
	items := []models.MenuItem{}
	if err := r.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("category asc").Order("id asc").
		Find(&items).Error; err != nil {
		return nil, nil, err
	}

	groups := []models.AddonGroup{}
	if err := r.DB.WithContext(ctx).
		Preload("Addons").
		Where("restaurant_id = ?", restaurantID).
		Order("id asc").
		Find(&groups).Error; err != nil {
		return nil, nil, err
	}
	return items, groups, nil
}
