// Package di wires repositories, usecases and handlers into a runnable application.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	useradapters "recipe_backend/internal/feature/user/adapters"
	"recipe_backend/internal/feature/user/usecase"
	"recipe_backend/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the database.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return useradapters.NewSessionGorm(db)
}
