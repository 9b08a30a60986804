package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_backend/internal/feature/user/domain"
	"recipe_backend/internal/feature/user/domain/entity"
)

// mockUserRepository はテスト用のUserRepositoryモック実装です。
type mockUserRepository struct {
	findByIDFn func(ctx context.Context, id uint) (*entity.User, error)
	updateFn   func(ctx context.Context, user *entity.User) error
	deleteFn   func(ctx context.Context, id uint) error
	findCalls  int
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error { return nil }

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	m.findCalls++
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func testUser() *entity.User {
	return &entity.User{ID: 7, Email: "test@example.com", Name: "Test", Password: "hash", IsActive: true}
}

// TestNewCachingUserRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingUserRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "users"},
		{"negative ttl uses default", -1 * time.Minute, "", 5 * time.Minute, "users"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingUserRepository(nil, tt.ttl, &mockUserRepository{}, tt.namespace)

			assert.Equal(t, tt.expectedTTL, repo.ttl)
			assert.Equal(t, tt.expectedNamespace, repo.namespace)
		})
	}
}

// TestCachingUserRepository_FindByID_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingUserRepository_FindByID_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) { return testUser(), nil },
	}
	repo := NewCachingUserRepository(nil, time.Minute, inner, "users")

	for range 2 {
		_, err := repo.FindByID(context.Background(), 7)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.findCalls)
}

// TestCachingUserRepository_FindByID_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingUserRepository_FindByID_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(testUser())
	mock.ExpectGet("users:7").SetVal(string(cached))

	inner := &mockUserRepository{}
	repo := NewCachingUserRepository(rdb, 5*time.Minute, inner, "users")

	user, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "hash", user.Password)
	assert.Zero(t, inner.findCalls, "inner repository should not be called on cache hit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_FindByID_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingUserRepository_FindByID_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(testUser())
	mock.ExpectGet("users:7").RedisNil()
	mock.ExpectSet("users:7", expected, 5*time.Minute).SetVal("OK")

	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) { return testUser(), nil },
	}
	repo := NewCachingUserRepository(rdb, 5*time.Minute, inner, "users")

	_, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.findCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_FindByID_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingUserRepository_FindByID_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(testUser())
	mock.ExpectGet("users:7").SetVal("invalid json")
	mock.ExpectDel("users:7").SetVal(1)
	mock.ExpectSet("users:7", expected, 5*time.Minute).SetVal("OK")

	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) { return testUser(), nil },
	}
	repo := NewCachingUserRepository(rdb, 5*time.Minute, inner, "users")

	user, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_FindByID_InnerError は内部リポジトリのエラーが伝播し、キャッシュされないことを検証します。
func TestCachingUserRepository_FindByID_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("users:9").RedisNil()

	repo := NewCachingUserRepository(rdb, 5*time.Minute, &mockUserRepository{}, "users")
	_, err := repo.FindByID(context.Background(), 9)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_Invalidation は更新・削除でキャッシュが破棄されることを検証します。
func TestCachingUserRepository_Invalidation(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	current := testUser()
	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) {
			u := *current
			return &u, nil
		},
		updateFn: func(ctx context.Context, user *entity.User) error {
			current = user
			return nil
		},
	}
	repo := NewCachingUserRepository(rdb, time.Minute, inner, "users")
	ctx := context.Background()

	_, err = repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists("users:7"))

	updated := testUser()
	updated.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, updated))
	assert.False(t, mr.Exists("users:7"))

	user, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, 2, inner.findCalls)

	require.NoError(t, repo.Delete(ctx, 7))
	assert.False(t, mr.Exists("users:7"))
}

// TestCachingUserRepository_UpdateError は内部リポジトリの更新エラー時にキャッシュを残すことを検証します。
func TestCachingUserRepository_UpdateError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("update error")
	inner := &mockUserRepository{
		updateFn: func(ctx context.Context, user *entity.User) error { return expectedErr },
	}
	repo := NewCachingUserRepository(rdb, time.Minute, inner, "users")

	err := repo.Update(context.Background(), testUser())
	assert.ErrorIs(t, err, expectedErr)
	// No Redis command is expected
	assert.NoError(t, mock.ExpectationsWereMet())
}
