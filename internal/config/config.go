package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Judge0    Judge0Config
	Redis     RedisConfig
	AI        AIConfig
	Grading   GradingConfig   `mapstructure:"grading"`
	Intake    IntakeConfig    `mapstructure:"intake"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type AIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// GradingConfig 评分策略配置：置信度表、代码通关阈值、外部评分重试策略
type GradingConfig struct {
	// MCQ 类题目按难度(1~5)查表得到置信度
	MCQConfidence map[int]float64 `mapstructure:"mcq_confidence"`
	// 自评问卷置信度（低信任）
	QuestionnaireConfidence float64 `mapstructure:"questionnaire_confidence"`
	// 代码题置信度（自动判题，高信任）
	CodeConfidence float64 `mapstructure:"code_confidence"`
	// AI 辅助评分置信度（中信任）
	AIConfidence float64 `mapstructure:"ai_confidence"`
	// 代码题缺省通关阈值（1.0 = 全部用例通过），题目可单独覆盖
	DefaultPassThreshold float64 `mapstructure:"default_pass_threshold"`
	// 维度掌握度低于该值视为薄弱维度，进入补救路线
	WeakDimensionThreshold float64 `mapstructure:"weak_dimension_threshold"`
	// AI 评分传输层错误重试次数与退避间隔；响应不可解析不重试，直接判 0 分
	AIMaxRetries int           `mapstructure:"ai_max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff_ms"`
}

// IntakeConfig 入学测评会话配置
type IntakeConfig struct {
	// IN_PROGRESS 会话闲置超过该时长后由后台任务标记为 ABANDONED
	AbandonAfter time.Duration `mapstructure:"abandon_after_hours"`
	// 会话总预估时长（分钟），返回给前端向导
	EstimatedMinutes int `mapstructure:"estimated_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type Judge0Config struct {
	APIKey string `mapstructure:"api_key"`
	URL    string
	Host   string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("SKILLPATH")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Judge0
	viper.BindEnv("judge0.api_key", "JUDGE0_API_KEY")
	viper.BindEnv("judge0.url", "JUDGE0_URL")
	viper.BindEnv("judge0.host", "JUDGE0_HOST")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Intake.AbandonAfter = cfg.Intake.AbandonAfter * time.Hour
	cfg.Grading.RetryBackoff = cfg.Grading.RetryBackoff * time.Millisecond
	applyGradingDefaults(&cfg.Grading)
	if cfg.Intake.AbandonAfter <= 0 {
		cfg.Intake.AbandonAfter = 72 * time.Hour
	}
	if cfg.Intake.EstimatedMinutes <= 0 {
		cfg.Intake.EstimatedMinutes = 45
	}

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func applyGradingDefaults(g *GradingConfig) {
	if len(g.MCQConfidence) == 0 {
		g.MCQConfidence = map[int]float64{1: 0.6, 2: 0.65, 3: 0.75, 4: 0.85, 5: 0.9}
	}
	if g.QuestionnaireConfidence <= 0 {
		g.QuestionnaireConfidence = 0.2
	}
	if g.CodeConfidence <= 0 {
		g.CodeConfidence = 0.9
	}
	if g.AIConfidence <= 0 {
		g.AIConfidence = 0.7
	}
	if g.DefaultPassThreshold <= 0 {
		g.DefaultPassThreshold = 1.0
	}
	if g.WeakDimensionThreshold <= 0 {
		g.WeakDimensionThreshold = 0.6
	}
	if g.AIMaxRetries < 0 {
		g.AIMaxRetries = 0
	}
	if g.RetryBackoff <= 0 {
		g.RetryBackoff = 500 * time.Millisecond
	}
}
