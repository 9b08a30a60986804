package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/shared/apperr"
)

// mockRecipeRepository is a mock implementation of RecipeRepository.
type mockRecipeRepository struct {
	ListFunc     func(ctx context.Context, userID uint, filter RecipeFilter) ([]entity.Recipe, error)
	FindByIDFunc func(ctx context.Context, userID, id uint) (*entity.Recipe, error)
	CreateFunc   func(ctx context.Context, recipe *entity.Recipe, tags, ingredients []string) error
	UpdateFunc   func(ctx context.Context, recipe *entity.Recipe, tags, ingredients *[]string) error
	DeleteFunc   func(ctx context.Context, userID, id uint) error
	PathsFunc    func(ctx context.Context, userID uint) ([]string, error)
}

func (m *mockRecipeRepository) List(ctx context.Context, userID uint, filter RecipeFilter) ([]entity.Recipe, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (m *mockRecipeRepository) FindByID(ctx context.Context, userID, id uint) (*entity.Recipe, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, userID, id)
	}
	return nil, domain.ErrRecipeNotFound
}

func (m *mockRecipeRepository) Create(ctx context.Context, recipe *entity.Recipe, tags, ingredients []string) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, recipe, tags, ingredients)
	}
	recipe.ID = 1
	return nil
}

func (m *mockRecipeRepository) Update(ctx context.Context, recipe *entity.Recipe, tags, ingredients *[]string) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, recipe, tags, ingredients)
	}
	return nil
}

func (m *mockRecipeRepository) Delete(ctx context.Context, userID, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

func (m *mockRecipeRepository) ImagePaths(ctx context.Context, userID uint) ([]string, error) {
	if m.PathsFunc != nil {
		return m.PathsFunc(ctx, userID)
	}
	return nil, nil
}

// mockImageStorage records saved and deleted paths.
type mockImageStorage struct {
	saved     map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
}

func newMockImageStorage() *mockImageStorage {
	return &mockImageStorage{saved: map[string][]byte{}}
}

func (m *mockImageStorage) Save(ctx context.Context, path string, r io.Reader) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.saved[path] = data
	return nil
}

func (m *mockImageStorage) Delete(ctx context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	return m.deleteErr
}

func strPtr(s string) *string { return &s }

func sampleRecipe() *entity.Recipe {
	return &entity.Recipe{
		ID:          4,
		UserID:      1,
		Title:       "Sample recipe title",
		Description: "Sample description",
		TimeMinutes: 22,
		Price:       decimal.RequireFromString("5.25"),
		Link:        "http://example.com/recipe.pdf",
		Tags:        []entity.Tag{{ID: 1, Name: "Breakfast", UserID: 1}},
	}
}

func TestRecipeUsecase_Create(t *testing.T) {
	t.Parallel()

	t.Run("success: owner forced and names deduplicated", func(t *testing.T) {
		t.Parallel()

		var gotRecipe *entity.Recipe
		var gotTags, gotIngredients []string
		repo := &mockRecipeRepository{
			CreateFunc: func(ctx context.Context, recipe *entity.Recipe, tags, ingredients []string) error {
				recipe.ID = 10
				gotRecipe, gotTags, gotIngredients = recipe, tags, ingredients
				return nil
			},
		}
		uc := NewRecipeUsecase(repo, newMockImageStorage())

		recipe, err := uc.Create(context.Background(), 7, RecipeInput{
			Title:       "Chicken Curry",
			TimeMinutes: 20,
			Price:       decimal.RequireFromString("2.50"),
			Tags:        []string{"Chicken", "Dinner", "Chicken"},
			Ingredients: []string{" Salt ", "Salt"},
		})
		require.NoError(t, err)

		assert.Equal(t, uint(10), recipe.ID)
		assert.Equal(t, uint(7), gotRecipe.UserID)
		assert.Equal(t, "Chicken Curry", gotRecipe.Title)
		assert.Equal(t, "2.50", gotRecipe.Price.StringFixed(2))
		assert.Equal(t, []string{"Chicken", "Dinner"}, gotTags)
		assert.Equal(t, []string{"Salt"}, gotIngredients)
	})

	failures := []struct {
		name    string
		input   RecipeInput
		wantErr error
	}{
		{"blank title", RecipeInput{Title: " ", Price: decimal.NewFromInt(1)}, domain.ErrTitleRequired},
		{"title too long", RecipeInput{Title: strings.Repeat("t", 256), Price: decimal.NewFromInt(1)}, domain.ErrTitleTooLong},
		{"negative time", RecipeInput{Title: "x", TimeMinutes: -1, Price: decimal.NewFromInt(1)}, domain.ErrNegativeTime},
		{"three decimals", RecipeInput{Title: "x", Price: decimal.RequireFromString("1.234")}, domain.ErrInvalidPrice},
		{"too many digits", RecipeInput{Title: "x", Price: decimal.RequireFromString("1000.00")}, domain.ErrInvalidPrice},
		{"link too long", RecipeInput{Title: "x", Price: decimal.NewFromInt(1), Link: strings.Repeat("l", 256)}, domain.ErrLinkTooLong},
		{"blank tag name", RecipeInput{Title: "x", Price: decimal.NewFromInt(1), Tags: []string{""}}, domain.ErrNameRequired},
	}
	for _, tt := range failures {
		t.Run("failure: "+tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockRecipeRepository{
				CreateFunc: func(ctx context.Context, recipe *entity.Recipe, tags, ingredients []string) error {
					t.Fatal("Create must not be called")
					return nil
				},
			}
			uc := NewRecipeUsecase(repo, newMockImageStorage())

			_, err := uc.Create(context.Background(), 1, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	t.Run("price with trailing zeros is accepted", func(t *testing.T) {
		t.Parallel()

		uc := NewRecipeUsecase(&mockRecipeRepository{}, newMockImageStorage())
		recipe, err := uc.Create(context.Background(), 1, RecipeInput{Title: "x", Price: decimal.RequireFromString("999.990")})
		require.NoError(t, err)
		assert.Equal(t, "999.99", recipe.Price.StringFixed(2))
	})
}

func TestRecipeUsecase_Update(t *testing.T) {
	t.Parallel()

	t.Run("partial update touches only given fields", func(t *testing.T) {
		t.Parallel()

		var gotTags, gotIngredients *[]string
		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return sampleRecipe(), nil },
			UpdateFunc: func(ctx context.Context, recipe *entity.Recipe, tags, ingredients *[]string) error {
				gotTags, gotIngredients = tags, ingredients
				return nil
			},
		}
		uc := NewRecipeUsecase(repo, newMockImageStorage())

		recipe, err := uc.Update(context.Background(), 1, 4, RecipePatch{Title: strPtr("New recipe title")})
		require.NoError(t, err)

		assert.Equal(t, "New recipe title", recipe.Title)
		assert.Equal(t, "http://example.com/recipe.pdf", recipe.Link)
		assert.Equal(t, 22, recipe.TimeMinutes)
		assert.Equal(t, uint(1), recipe.UserID)
		assert.Nil(t, gotTags, "absent tags leave associations untouched")
		assert.Nil(t, gotIngredients)
	})

	t.Run("empty tags clear associations", func(t *testing.T) {
		t.Parallel()

		var gotTags *[]string
		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return sampleRecipe(), nil },
			UpdateFunc: func(ctx context.Context, recipe *entity.Recipe, tags, ingredients *[]string) error {
				gotTags = tags
				return nil
			},
		}
		uc := NewRecipeUsecase(repo, newMockImageStorage())

		empty := []string{}
		_, err := uc.Update(context.Background(), 1, 4, RecipePatch{Tags: &empty})
		require.NoError(t, err)

		require.NotNil(t, gotTags)
		assert.Empty(t, *gotTags)
	})

	t.Run("replacing tags deduplicates names", func(t *testing.T) {
		t.Parallel()

		var gotTags *[]string
		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return sampleRecipe(), nil },
			UpdateFunc: func(ctx context.Context, recipe *entity.Recipe, tags, ingredients *[]string) error {
				gotTags = tags
				return nil
			},
		}
		uc := NewRecipeUsecase(repo, newMockImageStorage())

		tags := []string{"Lunch", "Lunch"}
		_, err := uc.Update(context.Background(), 1, 4, RecipePatch{Tags: &tags})
		require.NoError(t, err)
		assert.Equal(t, []string{"Lunch"}, *gotTags)
	})

	t.Run("other user's recipe", func(t *testing.T) {
		t.Parallel()

		uc := NewRecipeUsecase(&mockRecipeRepository{}, newMockImageStorage())
		_, err := uc.Update(context.Background(), 2, 4, RecipePatch{Title: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	})

	t.Run("invalid field", func(t *testing.T) {
		t.Parallel()

		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return sampleRecipe(), nil },
			UpdateFunc: func(ctx context.Context, recipe *entity.Recipe, tags, ingredients *[]string) error {
				t.Fatal("Update must not be called")
				return nil
			},
		}
		uc := NewRecipeUsecase(repo, newMockImageStorage())

		minutes := -5
		_, err := uc.Update(context.Background(), 1, 4, RecipePatch{TimeMinutes: &minutes})
		assert.ErrorIs(t, err, domain.ErrNegativeTime)
	})
}

func TestRecipeUsecase_Delete(t *testing.T) {
	t.Parallel()

	t.Run("removes image", func(t *testing.T) {
		t.Parallel()

		recipe := sampleRecipe()
		recipe.Image = "uploads/recipe/old.png"
		deleted := false
		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return recipe, nil },
			DeleteFunc: func(ctx context.Context, userID, id uint) error {
				deleted = true
				return nil
			},
		}
		storage := newMockImageStorage()
		uc := NewRecipeUsecase(repo, storage)

		require.NoError(t, uc.Delete(context.Background(), 1, 4))
		assert.True(t, deleted)
		assert.Equal(t, []string{"uploads/recipe/old.png"}, storage.deleted)
	})

	t.Run("storage failure does not fail the request", func(t *testing.T) {
		t.Parallel()

		recipe := sampleRecipe()
		recipe.Image = "uploads/recipe/old.png"
		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return recipe, nil },
		}
		storage := newMockImageStorage()
		storage.deleteErr = errors.New("disk error")
		uc := NewRecipeUsecase(repo, storage)

		assert.NoError(t, uc.Delete(context.Background(), 1, 4))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		uc := NewRecipeUsecase(&mockRecipeRepository{}, newMockImageStorage())
		assert.ErrorIs(t, uc.Delete(context.Background(), 1, 4), domain.ErrRecipeNotFound)
	})
}

func TestRecipeUsecase_UploadImage(t *testing.T) {
	t.Parallel()

	t.Run("success: stores under generated name and replaces old image", func(t *testing.T) {
		t.Parallel()

		recipe := sampleRecipe()
		recipe.Image = "uploads/recipe/old.png"
		var updatedImage string
		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return recipe, nil },
			UpdateFunc: func(ctx context.Context, r *entity.Recipe, tags, ingredients *[]string) error {
				assert.Nil(t, tags)
				assert.Nil(t, ingredients)
				updatedImage = r.Image
				return nil
			},
		}
		storage := newMockImageStorage()
		uc := NewRecipeUsecase(repo, storage)

		data := pngBytes(t)
		got, err := uc.UploadImage(context.Background(), 1, 4, "my photo.PNG", bytes.NewReader(data))
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(got.Image, ImageUploadDir+"/"))
		assert.True(t, strings.HasSuffix(got.Image, ".png"))
		assert.NotContains(t, got.Image, "my photo")
		assert.Equal(t, got.Image, updatedImage)
		assert.Equal(t, data, storage.saved[got.Image])
		assert.Equal(t, []string{"uploads/recipe/old.png"}, storage.deleted)
	})

	t.Run("invalid image", func(t *testing.T) {
		t.Parallel()

		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return sampleRecipe(), nil },
		}
		storage := newMockImageStorage()
		uc := NewRecipeUsecase(repo, storage)

		_, err := uc.UploadImage(context.Background(), 1, 4, "x.jpg", strings.NewReader("notanimage"))
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
		assert.Empty(t, storage.saved)
	})

	t.Run("missing image", func(t *testing.T) {
		t.Parallel()

		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return sampleRecipe(), nil },
		}
		uc := NewRecipeUsecase(repo, newMockImageStorage())

		_, err := uc.UploadImage(context.Background(), 1, 4, "", nil)
		assert.ErrorIs(t, err, domain.ErrImageRequired)
	})

	t.Run("update failure removes the new file", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database error")
		repo := &mockRecipeRepository{
			FindByIDFunc: func(ctx context.Context, userID, id uint) (*entity.Recipe, error) { return sampleRecipe(), nil },
			UpdateFunc: func(ctx context.Context, r *entity.Recipe, tags, ingredients *[]string) error {
				return dbErr
			},
		}
		storage := newMockImageStorage()
		uc := NewRecipeUsecase(repo, storage)

		_, err := uc.UploadImage(context.Background(), 1, 4, "a.png", bytes.NewReader(pngBytes(t)))
		assert.ErrorIs(t, err, dbErr)
		require.Len(t, storage.deleted, 1)
		_, saved := storage.saved[storage.deleted[0]]
		assert.True(t, saved)
	})

	t.Run("other user's recipe", func(t *testing.T) {
		t.Parallel()

		uc := NewRecipeUsecase(&mockRecipeRepository{}, newMockImageStorage())
		_, err := uc.UploadImage(context.Background(), 2, 4, "a.png", bytes.NewReader(pngBytes(t)))
		assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	})
}

func TestRecipeUsecase_List(t *testing.T) {
	t.Parallel()

	var gotFilter RecipeFilter
	repo := &mockRecipeRepository{
		ListFunc: func(ctx context.Context, userID uint, filter RecipeFilter) ([]entity.Recipe, error) {
			gotFilter = filter
			return []entity.Recipe{*sampleRecipe()}, nil
		},
	}
	uc := NewRecipeUsecase(repo, newMockImageStorage())

	list, err := uc.List(context.Background(), 1, RecipeFilter{TagIDs: []uint{1, 2}})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, []uint{1, 2}, gotFilter.TagIDs)
}

func TestRecipeUsecase_ImagePathsAndRemoveImages(t *testing.T) {
	t.Parallel()

	repo := &mockRecipeRepository{
		PathsFunc: func(ctx context.Context, userID uint) ([]string, error) {
			assert.Equal(t, uint(7), userID)
			return []string{"uploads/recipe/a.png", "uploads/recipe/b.jpg"}, nil
		},
	}
	storage := newMockImageStorage()
	storage.deleteErr = errors.New("disk error")
	uc := NewRecipeUsecase(repo, storage)

	paths, err := uc.ImagePaths(context.Background(), 7)
	require.NoError(t, err)

	// 削除失敗は後続のファイル削除を止めない
	uc.RemoveImages(context.Background(), append(paths, ""))
	assert.Equal(t, []string{"uploads/recipe/a.png", "uploads/recipe/b.jpg"}, storage.deleted)
}
