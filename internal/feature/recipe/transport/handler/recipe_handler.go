// Package handler はrecipeフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/transport/http/dto"
	"recipe_backend/internal/feature/recipe/usecase"
	"recipe_backend/internal/platform/http/response"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/shared/apperr"
)

// RecipeUsecase はレシピ操作のユースケースを定義します。
type RecipeUsecase interface {
	List(ctx context.Context, userID uint, filter usecase.RecipeFilter) ([]entity.Recipe, error)
	Get(ctx context.Context, userID, id uint) (*entity.Recipe, error)
	Create(ctx context.Context, userID uint, in usecase.RecipeInput) (*entity.Recipe, error)
	Update(ctx context.Context, userID, id uint, patch usecase.RecipePatch) (*entity.Recipe, error)
	Delete(ctx context.Context, userID, id uint) error
	UploadImage(ctx context.Context, userID, id uint, filename string, r io.Reader) (*entity.Recipe, error)
}

// RecipeHandler はレシピのHTTPリクエストを処理します。
// すべての操作は認証済みユーザーのレシピに限定されます。
type RecipeHandler struct {
	recipes  RecipeUsecase
	mediaURL string
}

// NewRecipeHandler はRecipeHandlerの新しいインスタンスを生成します。
// mediaURLは画像URLの接頭辞です（例: "/media"）。
func NewRecipeHandler(recipes RecipeUsecase, mediaURL string) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, mediaURL: mediaURL}
}

// currentUser は認証済みユーザーIDを返します。AuthRequiredの後でのみ呼び出されます。
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Error(c, apperr.Authentication("authentication credentials were not provided"))
	}
	return userID, ok
}

// List はレシピ一覧を返します。?tags=1,2 と ?ingredients=3 で絞り込めます。
func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tagIDs, err := parseIDList("tags", c.Query("tags"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ingredientIDs, err := parseIDList("ingredients", c.Query("ingredients"))
	if err != nil {
		response.Error(c, err)
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), userID, usecase.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeList(recipes))
}

// Create はレシピを作成し、詳細表現を返します。
func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.RecipeCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("recipe create validation failed", "error", err, "user_id", userID)
		response.Error(c, response.BindError(err))
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, req.Input())
	if err != nil {
		response.Error(c, err)
		return
	}
	slog.Info("recipe created", "recipe_id", recipe.ID, "user_id", userID)
	c.JSON(http.StatusCreated, dto.NewRecipeDetailRes(recipe, h.mediaURL))
}

// Get はレシピの詳細を返します。
func (h *RecipeHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, domain.ErrRecipeNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeDetailRes(recipe, h.mediaURL))
}

// Replace は PUT を処理します。
func (h *RecipeHandler) Replace(c *gin.Context) {
	var req dto.RecipePutReq
	h.update(c, &req, func() usecase.RecipePatch { return req.Patch() })
}

// Patch は PATCH を処理します。
func (h *RecipeHandler) Patch(c *gin.Context) {
	var req dto.RecipePatchReq
	h.update(c, &req, func() usecase.RecipePatch { return req.Patch() })
}

// update はリクエストをreqにバインドし、toPatchで変換した内容でレシピを更新します。
func (h *RecipeHandler) update(c *gin.Context, req any, toPatch func() usecase.RecipePatch) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, domain.ErrRecipeNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}
	bind := c.ShouldBindJSON
	if c.Request.Method == http.MethodPatch {
		bind = func(obj any) error { return response.BindPatch(c, obj) }
	}
	if err := bind(req); err != nil {
		slog.Warn("recipe update validation failed", "error", err, "user_id", userID, "recipe_id", id)
		response.Error(c, response.BindError(err))
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, toPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeDetailRes(recipe, h.mediaURL))
}

// Delete はレシピを削除します。
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, domain.ErrRecipeNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	slog.Info("recipe deleted", "recipe_id", id, "user_id", userID)
	c.Status(http.StatusNoContent)
}

// UploadImage はmultipartの"image"フィールドを受け取り、レシピの画像を置き換えます。
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, domain.ErrRecipeNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		response.Error(c, domain.ErrImageRequired)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, domain.ErrInvalidImage)
		return
	}
	defer f.Close()

	recipe, err := h.recipes.UploadImage(c.Request.Context(), userID, id, fh.Filename, f)
	if err != nil {
		slog.Warn("recipe image upload failed", "error", err, "user_id", userID, "recipe_id", id)
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeImageRes(recipe, h.mediaURL))
}
