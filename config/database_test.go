package config

import (
	"testing"

	"food-ordering-api/models"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

func TestSeedDemoIsIdempotent(t *testing.T) {
	db, err := OpenDB(&Config{
		DBDriver: "sqlite",
		DBSource: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: zapcore.ErrorLevel,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	first, err := SeedDemo(db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	second, err := SeedDemo(db)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if len(first) != 4 || first[0].ID != second[0].ID {
		t.Errorf("users = %v / %v", first, second)
	}

	counts := map[string]any{
		"users":        &models.User{},
		"restaurants":  &models.Restaurant{},
		"branches":     &models.Branch{},
		"menu items":   &models.MenuItem{},
		"addon groups": &models.AddonGroup{},
		"addons":       &models.Addon{},
	}
	want := map[string]int64{
		"users": 4, "restaurants": 1, "branches": 2, "menu items": 3, "addon groups": 1, "addons": 2,
	}
	for name, model := range counts {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if n != want[name] {
			t.Errorf("%s = %d, want %d", name, n, want[name])
		}
	}

	var managed int64
	db.Table("branch_managers").Where("user_id = ?", first[1].ID).Count(&managed)
	if managed != 2 {
		t.Errorf("manager assigned to %d branches, want 2", managed)
	}
}
