package main

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"admin-gateway/pkg/common/config"
	"admin-gateway/pkg/common/logger"
	"admin-gateway/pkg/core/auth"
	"admin-gateway/pkg/core/captcha"
	"admin-gateway/pkg/core/settings"
	"admin-gateway/pkg/core/token"
	"admin-gateway/pkg/core/user/model"
	daoimpl "admin-gateway/pkg/core/user/repository/dao/impl"
	"admin-gateway/pkg/core/user/service"
	"admin-gateway/pkg/web/handler"
	"admin-gateway/pkg/web/router"
)

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "web",
		Short:         "Admin authentication gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (defaults to APP_CONFIG or ./config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(configFile)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update tables and seed default settings",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return migrate(cmd.Context(), configFile)
			},
		},
		&cobra.Command{
			Use:   "unlock <identifier>",
			Short: "Reactivate a locked account by username, email or mobile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return unlock(cmd.Context(), configFile, args[0])
			},
		},
		newUserAddCommand(&configFile),
	)
	return root
}

func newUserAddCommand(configFile *string) *cobra.Command {
	var email, mobile, name, password string
	cmd := &cobra.Command{
		Use:   "useradd <username>",
		Short: "Create an account; the password is stored as bcrypt(md5hex(password))",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			hashed, err := auth.HashPassword(auth.DocsDigest(password))
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			accounts := service.NewAccountService(daoimpl.NewGormUserRepository(db))
			id, err := accounts.CreateAccount(cmd.Context(), args[0], email, mobile, name, hashed)
			if err != nil {
				return err
			}
			cmd.Printf("created account %s (id %d)\n", args[0], id)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Plain text password")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// bootstrap 加载配置、初始化日志与数据库
func bootstrap(configFile string) (*config.Config, *gorm.DB, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.LoadFrom(configFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Load()
	}
	logger.Init(cfg.Log)

	db, err := cfg.InitDB()
	if err != nil {
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}
	return cfg, db, nil
}

func migrate(ctx context.Context, configFile string) error {
	_, db, err := bootstrap(configFile)
	if err != nil {
		return err
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate user tables: %w", err)
	}
	if err := captcha.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate captcha table: %w", err)
	}
	if err := settings.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate settings table: %w", err)
	}
	if err := settings.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	hlog.Infof("migration finished")
	return nil
}

func unlock(ctx context.Context, configFile, identifier string) error {
	_, db, err := bootstrap(configFile)
	if err != nil {
		return err
	}
	accounts := service.NewAccountService(daoimpl.NewGormUserRepository(db))
	user, err := accounts.Unlock(ctx, identifier)
	if err != nil {
		return err
	}
	fmt.Printf("unlocked %s (id %d)\n", user.Username, user.ID)
	return nil
}

func serve(configFile string) error {
	cfg, db, err := bootstrap(configFile)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	var store captcha.Store
	switch cfg.Captcha.Store {
	case "redis":
		rdb = cfg.InitRedis()
		store = captcha.NewRedisStore(rdb)
	case "gorm", "":
		store = captcha.NewGormStore(db)
	default:
		return fmt.Errorf("unsupported captcha store %q", cfg.Captcha.Store)
	}

	gen, err := captcha.NewGenerator(captcha.Mode(cfg.Captcha.Mode), cfg.Captcha.Width, cfg.Captcha.Height)
	if err != nil {
		return err
	}
	issuer, err := token.NewIssuer(cfg.Middleware.JWT)
	if err != nil {
		return err
	}
	flags := settings.NewDBProvider(db, cfg.Settings.CacheTTL, cfg.Auth.LoginNoCaptchaAuth)

	// 配置文件变更时同步部署开关与日志级别
	cfg.Watch(func(next *config.Config) {
		flags.SetNoCaptchaAuthAllowed(next.Auth.LoginNoCaptchaAuth)
		hlog.SetLevel(logger.ParseLevel(next.Log.Level))
		flags.Reload()
	})

	gateway := auth.NewGateway(
		daoimpl.NewGormUserRepository(db),
		daoimpl.NewGormLoginLogRepository(db),
		captcha.NewService(store, gen),
		issuer,
		flags,
		auth.WithMaxLoginErrors(cfg.Auth.MaxLoginErrors),
	)

	var health *handler.HealthCheckHandler
	if rdb != nil {
		health = handler.NewHealthCheckHandler(db, rdb)
	} else {
		health = handler.NewHealthCheckHandler(db, nil)
	}

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
	)

	if err := router.RegisterAPIs(h, cfg, handler.NewAuthHandler(gateway), health); err != nil {
		return err
	}

	if cfg.Auth.LoginNoCaptchaAuth && cfg.IsProd() {
		hlog.Warnf("auth.loginNoCaptchaAuth is enabled in production")
	}
	hlog.Infof("listening on %s (captcha store: %s)", cfg.Server.Address, cfg.Captcha.Store)
	h.Spin()
	return nil
}
