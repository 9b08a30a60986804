// Package entity defines the domain entities for the recipe feature.
package entity

// Attribute is a user-scoped label attached to recipes.
// Tag and Ingredient share this shape.
type Attribute struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:255;not null"`
	UserID uint   `gorm:"index;not null"`
}

// Tag labels a recipe (e.g. "Dinner").
type Tag Attribute

// TableName returns the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}

// Ingredient is an ingredient used by a recipe.
type Ingredient Attribute

// TableName returns the table name for GORM.
func (Ingredient) TableName() string {
	return "ingredients"
}
