// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Log           LogConfig           `mapstructure:"log"`
	CORS          CORSConfig          `mapstructure:"cors"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Search        SearchConfig        `mapstructure:"search"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 存储身份提供方令牌校验相关的配置。
// 后端不签发令牌，只校验身份提供方签发的 Bearer 身份令牌。
type AuthConfig struct {
	Secret    string `mapstructure:"secret"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
	ProjectID string `mapstructure:"project_id"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// CORSConfig 存储跨域相关的配置。
type CORSConfig struct {
	FrontendOrigin string `mapstructure:"frontend_origin"`
}

// RateLimitConfig 存储请求限流的配置：窗口期内每个客户端 IP 的最大请求数。
type RateLimitConfig struct {
	WindowMinutes int `mapstructure:"window_minutes"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SearchConfig 存储外部搜索 API 的配置。
// APIKey 为空时，声明核验功能整体关闭，可靠性得分保持基准值。
type SearchConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	NumResults int    `mapstructure:"num_results"`
}

// AnalysisConfig 存储分析编排相关的上限与阈值。
// 这些数值来自既有产品行为，统一收敛到配置而不是散落的字面量。
type AnalysisConfig struct {
	PromptMaxChars    int `mapstructure:"prompt_max_chars"`
	ExcerptMaxChars   int `mapstructure:"excerpt_max_chars"`
	ExtractMaxChars   int `mapstructure:"extract_max_chars"`
	BaseScore         int `mapstructure:"base_score"`
	MaxVerifiedClaims int `mapstructure:"max_verified_claims"`
	HistoryLimit      int `mapstructure:"history_limit"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 环境变量（TRUELENS_ 前缀）优先于文件中的同名配置项。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TRUELENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}

// setDefaults 注册各项配置的默认值。
func setDefaults() {
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("rate_limit.window_minutes", 15)
	viper.SetDefault("rate_limit.max_requests", 100)

	viper.SetDefault("search.base_url", "https://google.serper.dev")
	viper.SetDefault("search.num_results", 5)

	viper.SetDefault("analysis.prompt_max_chars", 2000)
	viper.SetDefault("analysis.excerpt_max_chars", 500)
	viper.SetDefault("analysis.extract_max_chars", 5000)
	viper.SetDefault("analysis.base_score", 70)
	viper.SetDefault("analysis.max_verified_claims", 3)
	viper.SetDefault("analysis.history_limit", 50)
}
