package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"recipe_backend/internal/app/di"
	useradapters "recipe_backend/internal/feature/user/adapters"
	"recipe_backend/internal/feature/user/usecase"
	"recipe_backend/internal/platform/config"
	"recipe_backend/internal/platform/db"
	platformhttp "recipe_backend/internal/platform/http"
	platformredis "recipe_backend/internal/platform/redis"
	"recipe_backend/internal/platform/storage"
)

// runner は各サブコマンドの実装を保持します。
type runner struct {
	out io.Writer
	// open は設定を読み込みDBへ接続します。テストで差し替えます。
	open func() (*config.Config, *gorm.DB, error)
	// connectRedis はサーバーと同じRedisへ接続します。
	connectRedis func(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error)
}

func newRunner(out io.Writer) *runner {
	return &runner{out: out, open: openFromConfig, connectRedis: platformredis.NewRedisClient}
}

func openFromConfig() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gdb, nil
}

func newApp(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "recipectl",
		Usage: "Administer the recipe API",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: r.Migrate,
			},
			{
				Name:  "createsuperuser",
				Usage: "Create a staff superuser",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Login email", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Login password",
						Sources:  cli.EnvVars("RECIPE_SUPERUSER_PASSWORD"),
						Required: true,
					},
				},
				Action: r.CreateSuperuser,
			},
			{
				Name:  "deleteuser",
				Usage: "Delete a user with all their recipes, tags and ingredients",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Login email", Required: true},
				},
				Action: r.DeleteUser,
			},
			{
				Name:   "clearsessions",
				Usage:  "Remove expired and revoked sessions stored in the database",
				Action: r.ClearSessions,
			},
			{
				Name:  "healthcheck",
				Usage: "Check a running server's /healthz endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "http://localhost:8080/healthz"},
					&cli.DurationFlag{Name: "timeout", Value: 5 * time.Second},
				},
				Action: r.Healthcheck,
			},
		},
	}
}

// Migrate はスキーマを作成・更新します。
func (r *runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	_, gdb, err := r.open()
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "migrations applied")
	return nil
}

// users はサーバーと同じセッションストア・ユーザーキャッシュ・メディア保存先でUserUsecaseを組み立てます。
// Redisが設定されている場合、接続できなければエラーです。
// 返されるclose関数はRedis接続を閉じます。
func (r *runner) users(ctx context.Context) (*usecase.UserUsecase, func(), error) {
	cfg, gdb, err := r.open()
	if err != nil {
		return nil, nil, err
	}
	media, err := storage.NewLocalStorage(cfg.Media.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init media storage: %w", err)
	}
	recipes := di.NewRecipeUsecase(gdb, media)
	if !cfg.Redis.Enabled() {
		return di.NewUserUsecase(cfg.JWT, gdb, nil, recipes), func() {}, nil
	}
	rdb, err := r.connectRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return di.NewUserUsecase(cfg.JWT, gdb, rdb, recipes), func() { _ = rdb.Close() }, nil
}

// CreateSuperuser はスタッフ権限とスーパーユーザー権限を持つユーザーを作成します。
func (r *runner) CreateSuperuser(ctx context.Context, cmd *cli.Command) error {
	users, closeUsers, err := r.users(ctx)
	if err != nil {
		return err
	}
	defer closeUsers()
	user, err := users.CreateSuperuser(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("createsuperuser: %w", err)
	}
	fmt.Fprintf(r.out, "superuser %s created (id=%d)\n", user.Email, user.ID)
	return nil
}

// DeleteUser はユーザーと所有データを削除します。
func (r *runner) DeleteUser(ctx context.Context, cmd *cli.Command) error {
	users, closeUsers, err := r.users(ctx)
	if err != nil {
		return err
	}
	defer closeUsers()
	user, err := users.UserByEmail(ctx, cmd.String("email"))
	if err != nil {
		return fmt.Errorf("deleteuser: %w", err)
	}
	if err := users.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("deleteuser: %w", err)
	}
	fmt.Fprintf(r.out, "user %s deleted\n", user.Email)
	return nil
}

// ClearSessions はDBに保存された期限切れ・失効済みのセッションを削除します。
func (r *runner) ClearSessions(ctx context.Context, cmd *cli.Command) error {
	_, gdb, err := r.open()
	if err != nil {
		return err
	}
	n, err := useradapters.NewSessionGorm(gdb).DeleteExpired(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d sessions removed\n", n)
	return nil
}

// Healthcheck は稼働中サーバーの/healthzを確認します。コンテナのHEALTHCHECK用です。
func (r *runner) Healthcheck(ctx context.Context, cmd *cli.Command) error {
	client := platformhttp.NewHTTPClient(cmd.Duration("timeout"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cmd.String("url"), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("healthcheck: unexpected status " + resp.Status)
	}
	fmt.Fprintln(r.out, "ok")
	return nil
}
