// Package usecase はuserフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"recipe_backend/internal/feature/user/domain"
	"recipe_backend/internal/feature/user/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 5
	// maxPasswordBytes はbcryptが扱える最大バイト数です。
	maxPasswordBytes = 72
)

// dummyHash はユーザーが存在しない場合にもbcrypt比較を実行するためのハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、domain.ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update はユーザーの変更を保存します。
	Update(ctx context.Context, user *entity.User) error

	// Delete はユーザーと所有するすべてのデータを削除します。
	Delete(ctx context.Context, id uint) error
}

// TokenService はAPIトークンの発行と検証を抽象化します。
type TokenService interface {
	// GenerateToken はセッションに紐づく署名済みトークンを生成します。
	GenerateToken(userID uint, sessionID string, expiresAt time.Time) (string, error)
	// ParseToken はトークンを検証し、ユーザーIDとセッションIDを返します。
	ParseToken(token string) (userID uint, sessionID string, err error)
}

// OwnedMedia はユーザーがアップロードしたファイルを扱います。
// アカウント削除時に、DBの行と一緒に消えるファイルを片付けるために使います。
type OwnedMedia interface {
	ImagePaths(ctx context.Context, userID uint) ([]string, error)
	// RemoveImages はベストエフォートで削除します。
	RemoveImages(ctx context.Context, paths []string)
}

// UserOptions はユーザー作成時の追加フィールドです。
type UserOptions struct {
	Name string
}

// UserPatch はユーザーの部分更新を表します。nilのフィールドは変更されません。
// IDと権限フラグはこの経路では変更できません。
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// ClientInfo はトークン発行時に記録するクライアント情報です。
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// UserUsecase はアカウントとトークンのビジネスロジックを実装します。
type UserUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenService
	tokenTTL time.Duration
	media    OwnedMedia
	now      func() time.Time
}

// NewUserUsecase はUserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository, sessions SessionRepository, tokens TokenService, tokenTTL time.Duration) *UserUsecase {
	return &UserUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// WithOwnedMedia はDeleteUserでアップロード済みファイルも削除するようにします。
func (u *UserUsecase) WithOwnedMedia(media OwnedMedia) *UserUsecase {
	u.media = media
	return u
}

// NormalizeEmail はメールアドレスのドメイン部分を小文字化します。ローカル部はそのまま保持します。
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return domain.ErrPasswordTooLong
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CreateUser はハッシュ化されたパスワードで新規ユーザーを登録します。
// メールアドレスが空の場合は何も永続化せずにdomain.ErrEmailRequiredを返します。
func (u *UserUsecase) CreateUser(ctx context.Context, email, password string, opts UserOptions) (*entity.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrEmailRequired
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Email:    email,
		Name:     opts.Name,
		Password: hashed,
		IsActive: true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSuperuser はCreateUserに委譲し、スタッフ権限とスーパーユーザー権限を付与します。
func (u *UserUsecase) CreateSuperuser(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.CreateUser(ctx, email, password, UserOptions{})
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register はAPI経由のユーザー登録です。CreateUserに加えてパスワード長を検証します。
func (u *UserUsecase) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return u.CreateUser(ctx, email, password, UserOptions{Name: name})
}

// IssueToken はユーザーを認証し、成功時にセッションを作成してトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *UserUsecase) IssueToken(ctx context.Context, email, password string, client ClientInfo) (string, error) {
	if password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", err
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil || !user.IsActive {
		return "", domain.ErrInvalidCredentials
	}

	now := u.now()
	session := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.tokenTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := u.tokens.GenerateToken(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Authenticate はトークンを検証し、有効なセッションとアクティブなユーザーを返します。
func (u *UserUsecase) Authenticate(ctx context.Context, token string) (*entity.User, *entity.Session, error) {
	userID, sessionID, err := u.tokens.ParseToken(token)
	if err != nil {
		return nil, nil, domain.ErrInvalidToken
	}

	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, domain.ErrInvalidToken
		}
		return nil, nil, err
	}
	if !session.ActiveAt(u.now()) || session.UserID != userID {
		return nil, nil, domain.ErrInvalidToken
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidToken
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, domain.ErrInvalidToken
	}
	return user, session, nil
}

// RevokeToken はセッションを失効させます（ログアウト）。
func (u *UserUsecase) RevokeToken(ctx context.Context, sessionID string) error {
	return u.sessions.Revoke(ctx, sessionID)
}

// Me は認証済みユーザー自身を返します。
func (u *UserUsecase) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UserByEmail はメールアドレスでユーザーを取得します。管理コマンド用です。
func (u *UserUsecase) UserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return u.users.FindByEmail(ctx, NormalizeEmail(email))
}

// UpdateMe は認証済みユーザー自身を部分更新します。
func (u *UserUsecase) UpdateMe(ctx context.Context, userID uint, patch UserPatch) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, domain.ErrEmailRequired
		}
		if email != user.Email {
			if _, err := u.users.FindByEmail(ctx, email); err == nil {
				return nil, domain.ErrEmailAlreadyExists
			} else if !errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hashed, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser はユーザーのセッションを失効させ、ユーザーと所有データを削除します。
// 画像ファイルは行の削除が確定した後に削除します。
func (u *UserUsecase) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return err
	}
	var images []string
	if u.media != nil {
		paths, err := u.media.ImagePaths(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list uploaded images: %w", err)
		}
		images = paths
	}
	if err := u.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	if err := u.users.Delete(ctx, userID); err != nil {
		return err
	}
	if len(images) > 0 {
		u.media.RemoveImages(ctx, images)
	}
	return nil
}

// CheckPassword はユーザーのパスワードハッシュと平文パスワードを比較します。
func CheckPassword(user *entity.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}
