// Package adapters はrecipeフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/usecase"
)

// attributeRow はタグ・材料のGORMモデルの型制約です。
type attributeRow interface {
	entity.Tag | entity.Ingredient
}

// attributeGorm はタグ・材料に共通する所有者スコープ付きリポジトリです。
// joinTable/joinColumn はレシピとの中間テーブルとその外部キー列を指します。
type attributeGorm[T attributeRow] struct {
	db         *gorm.DB
	joinTable  string
	joinColumn string
	notFound   error
}

var (
	_ usecase.AttributeRepository = (*attributeGorm[entity.Tag])(nil)
	_ usecase.AttributeRepository = (*attributeGorm[entity.Ingredient])(nil)
)

// NewTagGorm はタグ用のリポジトリを生成します。
func NewTagGorm(db *gorm.DB) *attributeGorm[entity.Tag] {
	return &attributeGorm[entity.Tag]{
		db:         db,
		joinTable:  "recipe_tags",
		joinColumn: "tag_id",
		notFound:   domain.ErrTagNotFound,
	}
}

// NewIngredientGorm は材料用のリポジトリを生成します。
func NewIngredientGorm(db *gorm.DB) *attributeGorm[entity.Ingredient] {
	return &attributeGorm[entity.Ingredient]{
		db:         db,
		joinTable:  "recipe_ingredients",
		joinColumn: "ingredient_id",
		notFound:   domain.ErrIngredientNotFound,
	}
}

func toAttributes[T attributeRow](rows []T) []entity.Attribute {
	out := make([]entity.Attribute, len(rows))
	for i, row := range rows {
		out[i] = entity.Attribute(row)
	}
	return out
}

// List は所有者の行を名前降順（同名はID降順）で返します。
// assignedOnlyの場合はサブクエリで絞り込むため、複数レシピに紐づく行も1回だけ返ります。
func (r *attributeGorm[T]) List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Attribute, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if assignedOnly {
		q = q.Where(fmt.Sprintf("id IN (SELECT %s FROM %s)", r.joinColumn, r.joinTable))
	}

	var rows []T
	if err := q.Order("name DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAttributes(rows), nil
}

// FindByID は所有者の行を取得します。他ユーザーの行はnotFoundになります。
func (r *attributeGorm[T]) FindByID(ctx context.Context, userID, id uint) (*entity.Attribute, error) {
	var row T
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound
		}
		return nil, err
	}
	attr := entity.Attribute(row)
	return &attr, nil
}

// Create は行を追加し、採番されたIDをattrに設定します。
func (r *attributeGorm[T]) Create(ctx context.Context, attr *entity.Attribute) error {
	if attr == nil {
		return errors.New("attribute is nil")
	}
	row := T(*attr)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	*attr = entity.Attribute(row)
	return nil
}

// GetOrCreate は(所有者, 名前)に一致する行を返し、なければ作成します。
func (r *attributeGorm[T]) GetOrCreate(ctx context.Context, userID uint, name string) (*entity.Attribute, bool, error) {
	return r.getOrCreate(r.db.WithContext(ctx), userID, name)
}

// getOrCreate はレシピ書き込みのトランザクション内からも呼ばれます。
func (r *attributeGorm[T]) getOrCreate(tx *gorm.DB, userID uint, name string) (*entity.Attribute, bool, error) {
	var rows []T
	if err := tx.Where("user_id = ? AND name = ?", userID, name).Order("id").Limit(1).Find(&rows).Error; err != nil {
		return nil, false, err
	}
	if len(rows) > 0 {
		attr := entity.Attribute(rows[0])
		return &attr, false, nil
	}

	row := T(entity.Attribute{Name: name, UserID: userID})
	if err := tx.Create(&row).Error; err != nil {
		return nil, false, err
	}
	attr := entity.Attribute(row)
	return &attr, true, nil
}

// Update は名前を保存します。所有者は条件にのみ使い、変更しません。
func (r *attributeGorm[T]) Update(ctx context.Context, attr *entity.Attribute) error {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ? AND user_id = ?", attr.ID, attr.UserID).
		Update("name", attr.Name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.notFound
	}
	return nil
}

// Delete は行とレシピとの紐づけを一つのトランザクションで削除します。
func (r *attributeGorm[T]) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row T
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return r.notFound
			}
			return err
		}
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.joinTable, r.joinColumn)
		if err := tx.Exec(stmt, id).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
}
