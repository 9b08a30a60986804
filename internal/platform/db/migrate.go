package db

import (
	"fmt"

	"gorm.io/gorm"

	recipeentity "recipe_backend/internal/feature/recipe/domain/entity"
	useradapters "recipe_backend/internal/feature/user/adapters"
	userentity "recipe_backend/internal/feature/user/domain/entity"
)

// Models lists every table owned by the application in dependency order.
func Models() []any {
	return []any{
		&userentity.User{},
		&useradapters.SessionModel{},
		&recipeentity.Tag{},
		&recipeentity.Ingredient{},
		&recipeentity.Recipe{},
	}
}

// Migrate creates or updates the schema, including the recipe join tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
