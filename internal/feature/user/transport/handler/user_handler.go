// Package handler はuserフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/user/domain"
	"recipe_backend/internal/feature/user/domain/entity"
	"recipe_backend/internal/feature/user/transport/http/dto"
	"recipe_backend/internal/feature/user/usecase"
	"recipe_backend/internal/platform/http/response"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/shared/apperr"
)

// UserUsecase はアカウント操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	Register(ctx context.Context, email, password, name string) (*entity.User, error)
	IssueToken(ctx context.Context, email, password string, client usecase.ClientInfo) (string, error)
	RevokeToken(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uint) (*entity.User, error)
	UpdateMe(ctx context.Context, userID uint, patch usecase.UserPatch) (*entity.User, error)
}

// UserHandler はアカウントとトークンのHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// Register はユーザー登録エンドポイントを処理します。
// - バリデーションエラー、メール重複時は400を返却
// - 成功時は201とユーザー表現を返却
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		response.Error(c, response.BindError(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		slog.Warn("register failed", "error", err, "remote_addr", c.ClientIP())
		response.Error(c, err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserRes(user))
}

// Token は認証情報を検証し、APIトークンを発行します。
// 認証失敗は401ではなく400を返します。
func (h *UserHandler) Token(c *gin.Context) {
	var req dto.TokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	token, err := h.users.IssueToken(c.Request.Context(), req.Email, req.Password, usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			slog.Warn("token request rejected", "remote_addr", c.ClientIP())
			response.Error(c, apperr.Validation(err.Error(), map[string]string{"non_field_errors": err.Error()}))
			return
		}
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenRes{Token: token})
}

// Revoke は提示されたトークンのセッションを失効させます。
func (h *UserHandler) Revoke(c *gin.Context) {
	sessionID, ok := jwtmw.SessionID(c)
	if !ok {
		response.Error(c, domain.ErrInvalidToken)
		return
	}
	if err := h.users.RevokeToken(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me は認証済みユーザー自身を返します。
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Error(c, domain.ErrInvalidToken)
		return
	}
	user, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// UpdateMe は認証済みユーザー自身を部分更新します。
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Error(c, domain.ErrInvalidToken)
		return
	}

	var req dto.UpdateMeReq
	bind := c.ShouldBindJSON
	if c.Request.Method == http.MethodPatch {
		bind = func(obj any) error { return response.BindPatch(c, obj) }
	}
	if err := bind(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	user, err := h.users.UpdateMe(c.Request.Context(), userID, usecase.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}
