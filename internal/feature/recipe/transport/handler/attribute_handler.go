package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/transport/http/dto"
	"recipe_backend/internal/platform/http/response"
)

// AttributeUsecase はタグ・材料操作のユースケースを定義します。
type AttributeUsecase interface {
	List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Attribute, error)
	Get(ctx context.Context, userID, id uint) (*entity.Attribute, error)
	Create(ctx context.Context, userID uint, name string) (*entity.Attribute, error)
	Rename(ctx context.Context, userID, id uint, name string) (*entity.Attribute, error)
	Delete(ctx context.Context, userID, id uint) error
}

// AttributeHandler はタグと材料で共通のHTTPハンドラーです。
type AttributeHandler struct {
	attrs    AttributeUsecase
	notFound error
}

// NewAttributeHandler はAttributeHandlerを生成します。
// notFoundは数値でないIDに対して返すエラーです。
func NewAttributeHandler(attrs AttributeUsecase, notFound error) *AttributeHandler {
	return &AttributeHandler{attrs: attrs, notFound: notFound}
}

// List は名前の降順で一覧を返します。?assigned_only=1 でレシピに紐づくものだけに絞ります。
func (h *AttributeHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	assignedOnly, err := parseAssignedOnly(c.Query("assigned_only"))
	if err != nil {
		response.Error(c, err)
		return
	}

	attrs, err := h.attrs.List(c.Request.Context(), userID, assignedOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttributeList(attrs))
}

// Create は新しいタグ・材料を作成します。
func (h *AttributeHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.AttributeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	attr, err := h.attrs.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAttributeRes(*attr))
}

// Get は1件を返します。
func (h *AttributeHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, h.notFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	attr, err := h.attrs.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttributeRes(*attr))
}

// Update は名前を変更します（PUT）。
func (h *AttributeHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, h.notFound)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AttributeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	attr, err := h.attrs.Rename(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttributeRes(*attr))
}

// Patch は部分更新です。nameがなければ現在の値を返します。
func (h *AttributeHandler) Patch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, h.notFound)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AttributePatchReq
	if err := response.BindPatch(c, &req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	var attr *entity.Attribute
	if req.Name == nil {
		attr, err = h.attrs.Get(c.Request.Context(), userID, id)
	} else {
		attr, err = h.attrs.Rename(c.Request.Context(), userID, id, *req.Name)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttributeRes(*attr))
}

// Delete は削除します。紐づいていたレシピは残ります。
func (h *AttributeHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := parsePathID(c, h.notFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.attrs.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
