package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg，环境变量 MEDIAHUB_* 可覆盖文件中的值
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("MEDIAHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Analytics.Timezone); err != nil {
		return nil, fmt.Errorf("invalid analytics.timezone %q: %w", cfg.Analytics.Timezone, err)
	}

	Cfg = &cfg
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enable", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("kafka.enable", false)

	v.SetDefault("kafka.consumer.session_timeout", 30)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 10)
	v.SetDefault("kafka.lifecycle_topic", "mediahub-content-lifecycle")
	v.SetDefault("kafka_session_consumer.topic", "mediahub-session-summary")
	v.SetDefault("kafka_session_consumer.group_id", "mediahub-session-summary-group")

	v.SetDefault("log.level", "info")
	v.SetDefault("logstash.index", "logstash-mediahub")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "Mediahub")

	v.SetDefault("scheduler.spec", "@every 30s")
	v.SetDefault("scheduler.batch_size", 500)
	v.SetDefault("scheduler.concurrency", 8)
	v.SetDefault("scheduler.item_timeout", 5*time.Second)
	v.SetDefault("scheduler.max_attempts", 3)
	v.SetDefault("scheduler.retry_backoff", 200*time.Millisecond)
	v.SetDefault("scheduler.lock_ttl", 25*time.Second)

	v.SetDefault("lifecycle.write_retries", 3)

	v.SetDefault("quota.default_units", 5)

	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.default_days", 30)
	v.SetDefault("analytics.query_timeout", 3*time.Second)
	v.SetDefault("analytics.cache_ttl", 5*time.Minute)

	v.SetDefault("reconcile.spec", "0 30 3 * * *")
	v.SetDefault("reconcile.limit", 200)
}
