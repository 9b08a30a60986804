package usecase

import (
	"context"

	"recipe_backend/internal/feature/user/domain/entity"
)

// SessionRepository はトークンに紐づくセッションの保存先です。
// Redis実装とDB実装があり、どちらも同じエラー規約に従います。
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	// FindByID は失効済みのセッションも返します。存在しない場合はdomain.ErrSessionNotFoundです。
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke はログアウト処理です。既に失効済みの場合もdomain.ErrSessionNotFoundを返します。
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID はユーザー削除時に呼ばれます。
	RevokeAllByUserID(ctx context.Context, userID uint) error
}
