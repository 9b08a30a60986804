package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/usecase"
)

// recipeGorm はRecipeRepositoryインターフェースのGORM実装です。
type recipeGorm struct {
	db          *gorm.DB
	tags        *attributeGorm[entity.Tag]
	ingredients *attributeGorm[entity.Ingredient]
}

// recipeGormがRecipeRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.RecipeRepository = (*recipeGorm)(nil)

// NewRecipeGorm は指定されたgorm.DB接続でrecipeGormの新しいインスタンスを生成します。
func NewRecipeGorm(db *gorm.DB) *recipeGorm {
	return &recipeGorm{
		db:          db,
		tags:        NewTagGorm(db),
		ingredients: NewIngredientGorm(db),
	}
}

// withAssociations はタグと材料をID昇順でプリロードします。
func withAssociations(q *gorm.DB) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id") }
	return q.Preload("Tags", byID).Preload("Ingredients", byID)
}

// List は所有者のレシピをID降順で返します。
// タグ・材料の条件はサブクエリで評価するため、複数のIDに一致しても重複しません。
func (r *recipeGorm) List(ctx context.Context, userID uint, filter usecase.RecipeFilter) ([]entity.Recipe, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(filter.TagIDs) > 0 {
		q = q.Where("id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id IN ?)", filter.TagIDs)
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN ?)", filter.IngredientIDs)
	}

	var recipes []entity.Recipe
	if err := withAssociations(q).Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// FindByID は所有者のレシピを取得します。
// 他ユーザーのレシピは存在しない場合と同じくdomain.ErrRecipeNotFoundを返します。
func (r *recipeGorm) FindByID(ctx context.Context, userID, id uint) (*entity.Recipe, error) {
	var recipe entity.Recipe
	q := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)
	if err := withAssociations(q).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// resolveTags は名前ごとに所有者のタグをget-or-createします。
func (r *recipeGorm) resolveTags(tx *gorm.DB, userID uint, names []string) ([]entity.Tag, error) {
	tags := make([]entity.Tag, 0, len(names))
	for _, name := range names {
		attr, _, err := r.tags.getOrCreate(tx, userID, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, entity.Tag(*attr))
	}
	return tags, nil
}

// resolveIngredients は名前ごとに所有者の材料をget-or-createします。
func (r *recipeGorm) resolveIngredients(tx *gorm.DB, userID uint, names []string) ([]entity.Ingredient, error) {
	ingredients := make([]entity.Ingredient, 0, len(names))
	for _, name := range names {
		attr, _, err := r.ingredients.getOrCreate(tx, userID, name)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, entity.Ingredient(*attr))
	}
	return ingredients, nil
}

// Create はレシピとタグ・材料の紐づけを一つのトランザクションで保存します。
func (r *recipeGorm) Create(ctx context.Context, recipe *entity.Recipe, tagNames, ingredientNames []string) error {
	if recipe == nil {
		return errors.New("recipe is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := r.resolveTags(tx, recipe.UserID, tagNames)
		if err != nil {
			return err
		}
		ingredients, err := r.resolveIngredients(tx, recipe.UserID, ingredientNames)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		if len(ingredients) > 0 {
			if err := tx.Model(recipe).Association("Ingredients").Append(ingredients); err != nil {
				return err
			}
		}
		recipe.Tags = tags
		recipe.Ingredients = ingredients
		return nil
	})
}

// Update はスカラー項目を保存し、指定があればタグ・材料の紐づけを置き換えます。
// 空スライスは紐づけの全解除で、タグ・材料の行自体は残ります。
func (r *recipeGorm) Update(ctx context.Context, recipe *entity.Recipe, tagNames, ingredientNames *[]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(recipe).
			Where("user_id = ?", recipe.UserID).
			Select("title", "description", "time_minutes", "price", "link", "image", "updated_at").
			Updates(recipe)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrRecipeNotFound
		}

		if tagNames != nil {
			tags, err := r.resolveTags(tx, recipe.UserID, *tagNames)
			if err != nil {
				return err
			}
			if err := replaceAssociation(tx.Model(recipe).Association("Tags"), tags); err != nil {
				return err
			}
			recipe.Tags = tags
		}
		if ingredientNames != nil {
			ingredients, err := r.resolveIngredients(tx, recipe.UserID, *ingredientNames)
			if err != nil {
				return err
			}
			if err := replaceAssociation(tx.Model(recipe).Association("Ingredients"), ingredients); err != nil {
				return err
			}
			recipe.Ingredients = ingredients
		}
		return nil
	})
}

// replaceAssociation は紐づけを置き換えます。空の場合は全解除します。
func replaceAssociation[T any](assoc *gorm.Association, values []T) error {
	if len(values) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}

// Delete はレシピと中間テーブルの行を削除します。タグ・材料の行は削除しません。
func (r *recipeGorm) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe entity.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRecipeNotFound
			}
			return err
		}
		for _, stmt := range []string{
			"DELETE FROM recipe_tags WHERE recipe_id = ?",
			"DELETE FROM recipe_ingredients WHERE recipe_id = ?",
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&recipe).Error
	})
}

// ImagePaths は所有者のレシピのうち画像が設定されているもののパスをID順で返します。
func (r *recipeGorm) ImagePaths(ctx context.Context, userID uint) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&entity.Recipe{}).
		Where("user_id = ? AND image <> ''", userID).
		Order("id").
		Pluck("image", &paths).Error
	if err != nil {
		return nil, err
	}
	return paths, nil
}
