package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/fsnotify/fsnotify"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type SecurityConfig struct {
	MaxBodySize    int64    `mapstructure:"maxBodySize"` // 单位：字节
	AllowedHosts   []string `mapstructure:"allowedHosts"`
	AllowedMethods []string `mapstructure:"allowedMethods"`
}

type TimeoutConfig struct {
	RequestTimeout int `mapstructure:"requestTimeout"` // 单位：秒
}

type CORSConfig struct {
	AllowOrigins     []string      `mapstructure:"allowOrigins"`
	AllowMethods     []string      `mapstructure:"allowMethods"`
	AllowHeaders     []string      `mapstructure:"allowHeaders"`
	ExposeHeaders    []string      `mapstructure:"exposeHeaders"`
	AllowCredentials bool          `mapstructure:"allowCredentials"`
	MaxAge           time.Duration `mapstructure:"maxAge"`
	TrustedDomains   []string      `mapstructure:"trustedDomains"`
}

type JWTAuthConfig struct {
	Secret         string        `mapstructure:"secret"`
	ExpireDuration time.Duration `mapstructure:"expireDuration"` // access token
	RefreshExpire  time.Duration `mapstructure:"refreshExpire"`  // refresh token
	Issuer         string        `mapstructure:"issuer"`
	SigningMethod  string        `mapstructure:"signingMethod"`
	Realm          string        `mapstructure:"realm"`
	TokenHeadName  string        `mapstructure:"tokenHeadName"` // Authorization 头前缀
}

type RateLimitConfig struct {
	Rate     int           `mapstructure:"rate"`
	Interval time.Duration `mapstructure:"interval"`
}

type MiddlewareConfig struct {
	Security       SecurityConfig  `mapstructure:"security"`
	JWT            JWTAuthConfig   `mapstructure:"jwt"`
	Timeout        TimeoutConfig   `mapstructure:"timeout"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rateLimit"`
	LoginRateLimit RateLimitConfig `mapstructure:"loginRateLimit"` // 登录类接口单独限流
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`      // mysql | sqlite
	Host        string `mapstructure:"host"`        // 数据库主机地址
	Port        int    `mapstructure:"port"`        // 数据库端口
	Username    string `mapstructure:"username"`    // 数据库用户名
	Password    string `mapstructure:"password"`    // 数据库密码
	DBName      string `mapstructure:"dbname"`      // 数据库名称，sqlite 下为文件路径
	UseUnixSock bool   `mapstructure:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `mapstructure:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `mapstructure:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `mapstructure:"logLevel"`    // GORM日志级别
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CaptchaConfig struct {
	Mode   string `mapstructure:"mode"`  // random | math
	Store  string `mapstructure:"store"` // gorm | redis
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

type AuthConfig struct {
	// LoginNoCaptchaAuth 开启 /api/token/ 免验证码签发接口，上线需关闭
	LoginNoCaptchaAuth bool `mapstructure:"loginNoCaptchaAuth"`
	MaxLoginErrors     int  `mapstructure:"maxLoginErrors"`
}

type SettingsConfig struct {
	CacheTTL time.Duration `mapstructure:"cacheTTL"` // 系统配置缓存时间
}

type SessionConfig struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
}

type DocsConfig struct {
	RequireLogin bool `mapstructure:"requireLogin"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // 为空时输出到 stdout
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
	Captcha    CaptchaConfig    `mapstructure:"captcha"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Settings   SettingsConfig   `mapstructure:"settings"`
	Session    SessionConfig    `mapstructure:"session"`
	Docs       DocsConfig       `mapstructure:"docs"`
	Log        LogConfig        `mapstructure:"log"`
	Env        string           `mapstructure:"env"` // 环境标识

	v *viper.Viper
}

// Default 返回一份独立的默认配置
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address: ":8000",
		},
		Database: DatabaseConfig{
			Driver:      "mysql",
			Host:        "localhost",
			Port:        3306,
			Username:    "root",
			Password:    "root",
			DBName:      "admin",
			MinPoolSize: 5,
			MaxPoolSize: 50,
			LogLevel:    "warn",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Middleware: MiddlewareConfig{
			Security: SecurityConfig{
				MaxBodySize:    10 << 20, // 10MB
				AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			},
			JWT: JWTAuthConfig{
				Secret:         "dev-secret-change-me-in-production", // 开发环境默认密钥
				ExpireDuration: 24 * time.Hour,
				RefreshExpire:  7 * 24 * time.Hour,
				Issuer:         "admin-gateway",
				SigningMethod:  "HS256",
				Realm:          "admin-gateway",
				TokenHeadName:  "Bearer",
			},
			Timeout: TimeoutConfig{
				RequestTimeout: 15,
			},
			CORS: CORSConfig{
				AllowOrigins:     []string{"http://localhost:8080"},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
			RateLimit: RateLimitConfig{
				Rate:     100,
				Interval: time.Second,
			},
			LoginRateLimit: RateLimitConfig{
				Rate:     10,
				Interval: time.Second,
			},
		},
		Captcha: CaptchaConfig{
			Mode:   "random",
			Store:  "gorm",
			Width:  160,
			Height: 60,
		},
		Auth: AuthConfig{
			MaxLoginErrors: 5,
		},
		Settings: SettingsConfig{
			CacheTTL: 30 * time.Second,
		},
		Session: SessionConfig{
			Name:   "docs_session",
			Secret: "dev-session-secret-change-me",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Env: "development",
	}
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() *Config {
	cfg, err := LoadFrom(getConfigPath())
	if err != nil {
		hlog.Warnf("Failed to load config file: %v", err)
		def := Default()
		loadFromEnv(&def)
		return &def
	}
	return cfg
}

// LoadFrom 从指定文件加载配置，path 为空时只使用默认值与环境变量
func LoadFrom(path string) (*Config, error) {
	config := Default()
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := v.Unmarshal(&config); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	loadFromEnv(&config)
	config.v = v
	return &config, nil
}

// Watch 监听配置文件变化，文件修改后重新解析并回调
func (c *Config) Watch(onChange func(next *Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		next := Default()
		if err := c.v.Unmarshal(&next); err != nil {
			hlog.Warnf("Config reload failed for %s: %v", e.Name, err)
			return
		}
		loadFromEnv(&next)
		next.v = c.v
		hlog.Infof("Config file changed: %s", e.Name)
		onChange(&next)
	})
	c.v.WatchConfig()
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	searchPaths := []string{
		"./config.yaml",
		"./config.json",
		"../config.yaml",
		"/etc/admin-gateway/config.yaml",
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Middleware.Timeout.RequestTimeout = timeout
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Rate = rate
		}
	}

	if v := os.Getenv("CORS_TRUSTED_DOMAINS"); v != "" {
		config.Middleware.CORS.TrustedDomains = splitEnvList(v)
	}

	/****** JWT 配置 ******/
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Middleware.JWT.Secret = v
	}

	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		if duration, err := time.ParseDuration(v); err == nil {
			config.Middleware.JWT.ExpireDuration = duration
		} else {
			hlog.Warnf("Invalid JWT_EXPIRATION format: %v", err)
		}
	}

	if v := os.Getenv("JWT_REFRESH_EXPIRATION"); v != "" {
		if duration, err := time.ParseDuration(v); err == nil {
			config.Middleware.JWT.RefreshExpire = duration
		} else {
			hlog.Warnf("Invalid JWT_REFRESH_EXPIRATION format: %v", err)
		}
	}

	if v := os.Getenv("JWT_ISSUER"); v != "" {
		config.Middleware.JWT.Issuer = v
	}

	if v := os.Getenv("JWT_ALGORITHM"); v != "" {
		algorithm := strings.ToLower(strings.ReplaceAll(v, " ", ""))

		validAlgorithms := map[string]bool{
			"hs256": true,
			"hs384": true,
			"hs512": true,
		}

		if validAlgorithms[algorithm] {
			config.Middleware.JWT.SigningMethod = strings.ToUpper(algorithm)
		} else {
			hlog.Warnf("Unsupported JWT algorithm: %s", v)
		}
	}

	/****** 登录相关 ******/
	if v := os.Getenv("LOGIN_NO_CAPTCHA_AUTH"); v != "" {
		config.Auth.LoginNoCaptchaAuth = parseBool(v)
	}

	if v := os.Getenv("CAPTCHA_STORE"); v != "" {
		config.Captcha.Store = strings.ToLower(v)
	}

	if v := os.Getenv("SESSION_SECRET"); v != "" {
		config.Session.Secret = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = strings.ToLower(v)
	}

	// 数据库配置
	if v := os.Getenv("DB_DRIVER"); v != "" {
		config.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}

	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

func (c *Config) InitDB() (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	switch c.Database.LogLevel {
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	case "error":
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	case "warn":
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch c.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(c.Database.DBName)
	case "mysql", "":
		dialector = mysql.Open(c.mysqlDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)

	return db, nil
}

func (c *Config) mysqlDSN() string {
	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"

	// 自动切换连接方式
	if c.Database.UseUnixSock {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host, // 这里host存储的是socket路径
			c.Database.DBName,
			charsetParam)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		charsetParam)
}

// InitRedis 创建 Redis 客户端（仅在验证码存储为 redis 时使用）
func (c *Config) InitRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}
