package dto

import (
	"strings"

	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/usecase"
)

// RecipeCreateReq は POST /api/recipes/ のリクエストボディです。
// tags/ingredientsの各名前はユースケースで検証します。
type RecipeCreateReq struct {
	Title       string         `json:"title" binding:"required,max=255"`
	Description string         `json:"description"`
	TimeMinutes *int           `json:"time_minutes" binding:"required,gte=0"`
	Price       *Price         `json:"price" binding:"required"`
	Link        string         `json:"link" binding:"max=255"`
	Tags        []AttributeReq `json:"tags"`
	Ingredients []AttributeReq `json:"ingredients"`
}

// Input converts the request into a usecase input.
func (r RecipeCreateReq) Input() usecase.RecipeInput {
	return usecase.RecipeInput{
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: *r.TimeMinutes,
		Price:       r.Price.Decimal,
		Link:        r.Link,
		Tags:        names(r.Tags),
		Ingredients: names(r.Ingredients),
	}
}

// RecipePatchReq は PATCH /api/recipes/{id}/ のリクエストボディです。
// 省略されたフィールドは変更されず、"tags": [] は紐づけをすべて解除します。
type RecipePatchReq struct {
	Title       *string         `json:"title" binding:"omitempty,max=255"`
	Description *string         `json:"description"`
	TimeMinutes *int            `json:"time_minutes" binding:"omitempty,gte=0"`
	Price       *Price          `json:"price"`
	Link        *string         `json:"link" binding:"omitempty,max=255"`
	Tags        *[]AttributeReq `json:"tags"`
	Ingredients *[]AttributeReq `json:"ingredients"`
}

// Patch converts the request into a usecase patch.
func (r RecipePatchReq) Patch() usecase.RecipePatch {
	return usecase.RecipePatch{
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.decimalPtr(),
		Link:        r.Link,
		Tags:        namesPtr(r.Tags),
		Ingredients: namesPtr(r.Ingredients),
	}
}

// RecipePutReq は PUT /api/recipes/{id}/ のリクエストボディです。
// title, time_minutes, priceは必須で、それ以外はPATCHと同じ扱いです。
type RecipePutReq struct {
	Title       *string         `json:"title" binding:"required,max=255"`
	Description *string         `json:"description"`
	TimeMinutes *int            `json:"time_minutes" binding:"required,gte=0"`
	Price       *Price          `json:"price" binding:"required"`
	Link        *string         `json:"link" binding:"omitempty,max=255"`
	Tags        *[]AttributeReq `json:"tags"`
	Ingredients *[]AttributeReq `json:"ingredients"`
}

// Patch converts the request into a usecase patch.
func (r RecipePutReq) Patch() usecase.RecipePatch {
	return RecipePatchReq(r).Patch()
}

// RecipeRes は一覧で使うレシピの表現です。
type RecipeRes struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	TimeMinutes int            `json:"time_minutes"`
	Price       string         `json:"price"`
	Link        string         `json:"link"`
	Tags        []AttributeRes `json:"tags"`
	Ingredients []AttributeRes `json:"ingredients"`
}

// RecipeDetailRes は詳細表現です。一覧の項目にdescriptionとimageを加えます。
type RecipeDetailRes struct {
	RecipeRes
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// RecipeImageRes は画像アップロードのレスポンスです。
type RecipeImageRes struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

// NewRecipeRes converts a recipe into its list representation.
func NewRecipeRes(r *entity.Recipe) RecipeRes {
	tags := make([]entity.Attribute, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = entity.Attribute(t)
	}
	ingredients := make([]entity.Attribute, len(r.Ingredients))
	for i, in := range r.Ingredients {
		ingredients[i] = entity.Attribute(in)
	}
	return RecipeRes{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        NewAttributeList(tags),
		Ingredients: NewAttributeList(ingredients),
	}
}

// NewRecipeList converts recipes into list representations.
func NewRecipeList(recipes []entity.Recipe) []RecipeRes {
	out := make([]RecipeRes, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewRecipeRes(&recipes[i]))
	}
	return out
}

// NewRecipeDetailRes converts a recipe into its detail representation.
// mediaURL is the public prefix of uploaded files.
func NewRecipeDetailRes(r *entity.Recipe, mediaURL string) RecipeDetailRes {
	return RecipeDetailRes{
		RecipeRes:   NewRecipeRes(r),
		Description: r.Description,
		Image:       ImageURL(r.Image, mediaURL),
	}
}

// NewRecipeImageRes converts a recipe into its image upload response.
func NewRecipeImageRes(r *entity.Recipe, mediaURL string) RecipeImageRes {
	return RecipeImageRes{ID: r.ID, Image: ImageURL(r.Image, mediaURL)}
}

// ImageURL joins mediaURL and the stored path. An empty path yields nil.
func ImageURL(path, mediaURL string) *string {
	if path == "" {
		return nil
	}
	url := strings.TrimRight(mediaURL, "/") + "/" + strings.TrimLeft(path, "/")
	return &url
}
