// Package dto はuserフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "recipe_backend/internal/feature/user/domain/entity"

// RegisterReq は POST /api/users/ のリクエストボディです。
type RegisterReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=72"`
	Name     string `json:"name" binding:"max=255"`
}

// TokenReq は POST /api/users/token/ のリクエストボディです。
type TokenReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateMeReq は PATCH /api/users/me/ のリクエストボディです。
// 省略されたフィールドは変更されません。
type UpdateMeReq struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=5,max=72"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
}

// UserRes はユーザーの公開表現です。パスワードは含みません。
type UserRes struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenRes はトークン発行のレスポンスです。
type TokenRes struct {
	Token string `json:"token"`
}

// NewUserRes converts an entity into its response.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{Email: u.Email, Name: u.Name}
}
