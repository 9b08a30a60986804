package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is a recipe owned by a single user.
// Every attached tag and ingredient belongs to the same user.
type Recipe struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"index;not null"`
	Title       string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text;not null;default:''"`
	TimeMinutes int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Link        string          `gorm:"size:255;not null;default:''"`

	// Image is the path of the uploaded image relative to the media root. Empty when unset.
	Image string `gorm:"size:255;not null;default:''"`

	Tags        []Tag        `gorm:"many2many:recipe_tags;joinForeignKey:RecipeID;joinReferences:TagID"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;joinForeignKey:RecipeID;joinReferences:IngredientID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
