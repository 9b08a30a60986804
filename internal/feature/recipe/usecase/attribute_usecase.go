// Package usecase はrecipeフィーチャー（レシピ・タグ・材料）のビジネスロジックを実装します。
package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
)

// maxNameLength はタグ・材料名の最大文字数です。
const maxNameLength = 255

// AttributeRepository はタグ・材料の所有者スコープ付きコレクションを抽象化します。
// すべての操作は所有者IDで絞り込まれ、他ユーザーの行は存在しないものとして扱われます。
type AttributeRepository interface {
	// List は所有者の行を名前降順で返します。assignedOnlyの場合、レシピに紐づく行のみを重複なく返します。
	List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Attribute, error)
	FindByID(ctx context.Context, userID, id uint) (*entity.Attribute, error)
	Create(ctx context.Context, attr *entity.Attribute) error
	GetOrCreate(ctx context.Context, userID uint, name string) (*entity.Attribute, bool, error)
	Update(ctx context.Context, attr *entity.Attribute) error
	// Delete は行とレシピとの紐づけを削除します。レシピ自体は残ります。
	Delete(ctx context.Context, userID, id uint) error
}

// AttributeUsecase はタグ・材料に共通するユースケースです。
type AttributeUsecase struct {
	repo AttributeRepository
}

// NewAttributeUsecase はAttributeUsecaseの新しいインスタンスを生成します。
func NewAttributeUsecase(repo AttributeRepository) *AttributeUsecase {
	return &AttributeUsecase{repo: repo}
}

// validateName は名前を正規化して検証します。
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

// List は所有者のタグ・材料一覧を返します。
func (u *AttributeUsecase) List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Attribute, error) {
	return u.repo.List(ctx, userID, assignedOnly)
}

// Get は所有者の行を1件返します。
func (u *AttributeUsecase) Get(ctx context.Context, userID, id uint) (*entity.Attribute, error) {
	return u.repo.FindByID(ctx, userID, id)
}

// Create は所有者を呼び出し元に固定して行を作成します。
func (u *AttributeUsecase) Create(ctx context.Context, userID uint, name string) (*entity.Attribute, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	attr := &entity.Attribute{Name: name, UserID: userID}
	if err := u.repo.Create(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

// GetOrCreate は(所有者, 名前)に一致する行を返し、なければ作成します。
func (u *AttributeUsecase) GetOrCreate(ctx context.Context, userID uint, name string) (*entity.Attribute, bool, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, false, err
	}
	return u.repo.GetOrCreate(ctx, userID, name)
}

// Rename は名前を変更します。所有者は変更できません。
func (u *AttributeUsecase) Rename(ctx context.Context, userID, id uint, name string) (*entity.Attribute, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	attr, err := u.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	attr.Name = name
	if err := u.repo.Update(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

// Delete は所有者の行を削除します。
func (u *AttributeUsecase) Delete(ctx context.Context, userID, id uint) error {
	return u.repo.Delete(ctx, userID, id)
}
