package config

import (
	"fmt"

	"food-ordering-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedDemo creates one restaurant with two branches, a small menu and a user for
// every role. It is idempotent and returns the seeded users.
func SeedDemo(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		seedUsers := []models.User{
			{Name: "Demo Customer", Email: "customer@example.com", Role: models.RoleCustomer},
			{Name: "Demo Manager", Email: "manager@example.com", Role: models.RoleBranchManager},
			{Name: "Demo Admin", Email: "admin@example.com", Role: models.RoleRestaurantAdmin},
			{Name: "Super Admin", Email: "super@example.com", Role: models.RoleSuperAdmin},
		}
		for i := range seedUsers {
			if err := tx.Where(models.User{Email: seedUsers[i].Email}).
				FirstOrCreate(&seedUsers[i]).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", seedUsers[i].Email, err)
			}
		}
		users = seedUsers
		manager, admin := seedUsers[1], seedUsers[2]

		restaurant := models.Restaurant{Name: "Mat Salleh", AdminID: admin.ID}
		if err := tx.Where(models.Restaurant{Name: restaurant.Name}).
			FirstOrCreate(&restaurant).Error; err != nil {
			return fmt.Errorf("seed restaurant: %w", err)
		}

		for _, b := range []models.Branch{
			{Name: "Mat Salleh Taman Branch", Address: "Taman"},
			{Name: "Mat Salleh City Branch", Address: "City Centre"},
		} {
			b.RestaurantID = restaurant.ID
			if err := tx.Where(models.Branch{Name: b.Name, RestaurantID: restaurant.ID}).
				FirstOrCreate(&b).Error; err != nil {
				return fmt.Errorf("seed branch %s: %w", b.Name, err)
			}
			if err := tx.Model(&b).Association("Managers").Append(&manager); err != nil {
				return fmt.Errorf("seed branch managers: %w", err)
			}
		}

		for _, m := range []models.MenuItem{
			{Name: "Hot Chocolate", Category: "Air", Price: decimal.RequireFromString("8.00")},
			{Name: "Teh Tarik", Category: "Air", Price: decimal.RequireFromString("4.50")},
			{Name: "Nasi Lemak", Category: "Makanan", Price: decimal.RequireFromString("12.90")},
		} {
			m.RestaurantID = restaurant.ID
			m.IsAvailable = true
			if err := tx.Where(models.MenuItem{Name: m.Name, RestaurantID: restaurant.ID}).
				FirstOrCreate(&m).Error; err != nil {
				return fmt.Errorf("seed menu item %s: %w", m.Name, err)
			}
		}

		group := models.AddonGroup{Name: "Extras", RestaurantID: restaurant.ID}
		if err := tx.Where(group).FirstOrCreate(&group).Error; err != nil {
			return fmt.Errorf("seed addon group: %w", err)
		}
		for _, a := range []models.Addon{
			{Name: "Extra Egg", Price: decimal.RequireFromString("1.50")},
			{Name: "Extra Sambal", Price: decimal.RequireFromString("0.50")},
		} {
			a.AddonGroupID = group.ID
			if err := tx.Where(models.Addon{Name: a.Name, AddonGroupID: group.ID}).
				FirstOrCreate(&a).Error; err != nil {
				return fmt.Errorf("seed addon %s: %w", a.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
