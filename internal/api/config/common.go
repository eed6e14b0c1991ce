package config

import "time"

// Config 配置主体
type Config struct {
	Server               ServerConfig         `mapstructure:"server"`
	DB                   DBConfig             `mapstructure:"database"`
	Redis                RedisConfig          `mapstructure:"redis"`
	Kafka                KafkaConfig          `mapstructure:"kafka"`
	KafkaSessionConsumer KafkaSessionConsumer `mapstructure:"kafka_session_consumer"`
	Log                  LogConfig            `mapstructure:"log"`
	Logstash             LogstashConfig       `mapstructure:"logstash"`
	JWT                  JWTConfig            `mapstructure:"jwt"`
	Scheduler            SchedulerConfig      `mapstructure:"scheduler"`
	Lifecycle            LifecycleConfig      `mapstructure:"lifecycle"`
	Quota                QuotaConfig          `mapstructure:"quota"`
	Analytics            AnalyticsConfig      `mapstructure:"analytics"`
	Reconcile            ReconcileConfig      `mapstructure:"reconcile"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type KafkaConfig struct {
	Enable         bool           `mapstructure:"enable"`
	Brokers        []string       `mapstructure:"brokers"`
	Sasl           SaslConfig     `mapstructure:"sasl"`
	Consumer       ConsumerConfig `mapstructure:"consumer"`
	LifecycleTopic string         `mapstructure:"lifecycle_topic"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaSessionConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LogstashConfig 远程日志
type LogstashConfig struct {
	Enable  bool   `mapstructure:"enable"`
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// SchedulerConfig 自动发布
type SchedulerConfig struct {
	Spec         string        `mapstructure:"spec"`
	BatchSize    int           `mapstructure:"batch_size"`
	Concurrency  int           `mapstructure:"concurrency"`
	ItemTimeout  time.Duration `mapstructure:"item_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

type LifecycleConfig struct {
	WriteRetries int `mapstructure:"write_retries"`
}

type QuotaConfig struct {
	DefaultUnits float64 `mapstructure:"default_units"`
}

// AnalyticsConfig 看板统计
type AnalyticsConfig struct {
	Timezone     string        `mapstructure:"timezone"`
	DefaultDays  int           `mapstructure:"default_days"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type ReconcileConfig struct {
	Spec  string `mapstructure:"spec"`
	Limit int    `mapstructure:"limit"`
}
