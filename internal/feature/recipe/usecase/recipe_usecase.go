package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
)

const (
	maxTitleLength = 255
	maxLinkLength  = 255

	// maxImageSize はアップロード画像の最大バイト数です。
	maxImageSize = 10 << 20
)

// maxPrice は価格の上限（5桁・小数2桁）です。
var maxPrice = decimal.NewFromInt(1000)

// RecipeRepository はレシピの永続化層を抽象化します。
// タグ・材料は名前で渡され、同一トランザクション内で所有者スコープのget-or-createが行われます。
type RecipeRepository interface {
	// List は所有者のレシピをID降順で重複なく返します。
	List(ctx context.Context, userID uint, filter RecipeFilter) ([]entity.Recipe, error)
	FindByID(ctx context.Context, userID, id uint) (*entity.Recipe, error)
	Create(ctx context.Context, recipe *entity.Recipe, tagNames, ingredientNames []string) error
	// Update はスカラー項目を保存します。tagNames/ingredientNamesがnilでなければ紐づけを置き換えます。
	Update(ctx context.Context, recipe *entity.Recipe, tagNames, ingredientNames *[]string) error
	// Delete はレシピと紐づけを削除します。タグ・材料は残ります。
	Delete(ctx context.Context, userID, id uint) error
	// ImagePaths は所有者のレシピに保存された画像パスを返します。
	ImagePaths(ctx context.Context, userID uint) ([]string, error)
}

// ImageStorage はアップロード画像の保存先を抽象化します。
type ImageStorage interface {
	Save(ctx context.Context, path string, r io.Reader) error
	Delete(ctx context.Context, path string) error
}

// RecipeFilter はレシピ一覧の絞り込み条件です。空のスライスは条件なしを意味します。
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeInput はレシピ作成時の入力です。
type RecipeInput struct {
	Title       string
	Description string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
	Tags        []string
	Ingredients []string
}

// RecipePatch はレシピの部分更新を表します。nilのフィールドは変更されません。
// 所有者とIDは型として含まれないため、この経路では変更できません。
// Tags/Ingredientsは空スライスを指す場合に紐づけをすべて解除します。
type RecipePatch struct {
	Title       *string
	Description *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Tags        *[]string
	Ingredients *[]string
}

// RecipeUsecase はレシピのビジネスロジックを実装します。
type RecipeUsecase struct {
	repo    RecipeRepository
	storage ImageStorage
}

// NewRecipeUsecase はRecipeUsecaseの新しいインスタンスを生成します。
func NewRecipeUsecase(repo RecipeRepository, storage ImageStorage) *RecipeUsecase {
	return &RecipeUsecase{repo: repo, storage: storage}
}

func setTitle(r *entity.Recipe, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return domain.ErrTitleTooLong
	}
	r.Title = title
	return nil
}

func setDescription(r *entity.Recipe, description string) error {
	r.Description = description
	return nil
}

func setTimeMinutes(r *entity.Recipe, minutes int) error {
	if minutes < 0 {
		return domain.ErrNegativeTime
	}
	r.TimeMinutes = minutes
	return nil
}

func setPrice(r *entity.Recipe, price decimal.Decimal) error {
	if !price.Equal(price.Truncate(2)) || price.Abs().GreaterThanOrEqual(maxPrice) {
		return domain.ErrInvalidPrice
	}
	r.Price = price
	return nil
}

func setLink(r *entity.Recipe, link string) error {
	link = strings.TrimSpace(link)
	if utf8.RuneCountInString(link) > maxLinkLength {
		return domain.ErrLinkTooLong
	}
	r.Link = link
	return nil
}

// applyTo はnilでない項目だけを名前付きセッターで反映します。
func (p RecipePatch) applyTo(r *entity.Recipe) error {
	if p.Title != nil {
		if err := setTitle(r, *p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := setDescription(r, *p.Description); err != nil {
			return err
		}
	}
	if p.TimeMinutes != nil {
		if err := setTimeMinutes(r, *p.TimeMinutes); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := setPrice(r, *p.Price); err != nil {
			return err
		}
	}
	if p.Link != nil {
		if err := setLink(r, *p.Link); err != nil {
			return err
		}
	}
	return nil
}

// normalizeNames は名前を検証し、ペイロード内の重複を取り除きます。
func normalizeNames(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		name, err := validateName(n)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// List は所有者のレシピを絞り込み条件付きで返します。
func (u *RecipeUsecase) List(ctx context.Context, userID uint, filter RecipeFilter) ([]entity.Recipe, error) {
	return u.repo.List(ctx, userID, filter)
}

// Get は所有者のレシピを返します。他ユーザーのレシピはErrRecipeNotFoundになります。
func (u *RecipeUsecase) Get(ctx context.Context, userID, id uint) (*entity.Recipe, error) {
	return u.repo.FindByID(ctx, userID, id)
}

// Create はレシピを作成します。所有者は常に呼び出し元です。
func (u *RecipeUsecase) Create(ctx context.Context, userID uint, in RecipeInput) (*entity.Recipe, error) {
	recipe := &entity.Recipe{UserID: userID}
	patch := RecipePatch{
		Title:       &in.Title,
		Description: &in.Description,
		TimeMinutes: &in.TimeMinutes,
		Price:       &in.Price,
		Link:        &in.Link,
	}
	if err := patch.applyTo(recipe); err != nil {
		return nil, err
	}

	tags, err := normalizeNames(in.Tags)
	if err != nil {
		return nil, err
	}
	ingredients, err := normalizeNames(in.Ingredients)
	if err != nil {
		return nil, err
	}

	if err := u.repo.Create(ctx, recipe, tags, ingredients); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Update はレシピを部分更新します。
func (u *RecipeUsecase) Update(ctx context.Context, userID, id uint, patch RecipePatch) (*entity.Recipe, error) {
	recipe, err := u.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := patch.applyTo(recipe); err != nil {
		return nil, err
	}

	var tags, ingredients *[]string
	if patch.Tags != nil {
		names, err := normalizeNames(*patch.Tags)
		if err != nil {
			return nil, err
		}
		tags = &names
	}
	if patch.Ingredients != nil {
		names, err := normalizeNames(*patch.Ingredients)
		if err != nil {
			return nil, err
		}
		ingredients = &names
	}

	if err := u.repo.Update(ctx, recipe, tags, ingredients); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Delete はレシピを削除し、保存済みの画像を削除します。
func (u *RecipeUsecase) Delete(ctx context.Context, userID, id uint) error {
	recipe, err := u.repo.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	u.removeImage(ctx, recipe.Image)
	return nil
}

// UploadImage は画像を検証して保存し、レシピの画像パスを置き換えます。
func (u *RecipeUsecase) UploadImage(ctx context.Context, userID, id uint, filename string, r io.Reader) (*entity.Recipe, error) {
	recipe, err := u.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrImageRequired
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, domain.ErrInvalidImage
	}
	if err := validateImage(data); err != nil {
		return nil, err
	}

	newPath := ImageFilePath(filename)
	if err := u.storage.Save(ctx, newPath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	oldPath := recipe.Image
	recipe.Image = newPath
	if err := u.repo.Update(ctx, recipe, nil, nil); err != nil {
		u.removeImage(ctx, newPath)
		return nil, err
	}
	u.removeImage(ctx, oldPath)
	return recipe, nil
}

// ImagePaths は所有者がアップロードした画像のパスを返します。アカウント削除時に使われます。
func (u *RecipeUsecase) ImagePaths(ctx context.Context, userID uint) ([]string, error) {
	return u.repo.ImagePaths(ctx, userID)
}

// RemoveImages は画像ファイルをまとめて削除します。失敗はログに残すだけです。
func (u *RecipeUsecase) RemoveImages(ctx context.Context, paths []string) {
	for _, p := range paths {
		u.removeImage(ctx, p)
	}
}

// removeImage は画像ファイルを削除します。失敗してもリクエストは失敗させません。
func (u *RecipeUsecase) removeImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := u.storage.Delete(ctx, path); err != nil {
		slog.Warn("failed to remove recipe image", "path", path, "error", err)
	}
}
