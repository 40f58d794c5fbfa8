package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// setDefaults 各引擎参数的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("moderation.high_severity_threshold", 8.0)
	v.SetDefault("moderation.mid_severity_threshold", 5.0)
	v.SetDefault("moderation.normalize", true)

	v.SetDefault("heat.base", 1.0)
	v.SetDefault("heat.half_life_hours", 24.0)
	v.SetDefault("heat.min_decay", 0.1)
	v.SetDefault("heat.weights", map[string]float64{
		"like":     1.0,
		"comment":  2.0,
		"repost":   3.0,
		"favorite": 1.5,
	})
	v.SetDefault("heat.page_size", 100)
	v.SetDefault("heat.recent_window_hours", 24)
	v.SetDefault("heat.incremental_cap", 1000)
	v.SetDefault("heat.full_cap", 50000)

	v.SetDefault("similarity.static_weight", 0.3)
	v.SetDefault("similarity.behavior_weight", 0.7)
	v.SetDefault("similarity.max_age_hours", 24*7)
	v.SetDefault("similarity.workers", 8)
	v.SetDefault("similarity.incremental_cap", 200)
	v.SetDefault("similarity.full_cap", 1000)
	v.SetDefault("similarity.active_days", 30)

	v.SetDefault("recommendation.min_score", 0.1)
	v.SetDefault("recommendation.limit", 20)
	v.SetDefault("recommendation.refresh_cap", 500)
	v.SetDefault("recommendation.cache_minutes", 60)

	v.SetDefault("scheduler.enable", true)
	v.SetDefault("scheduler.similarity_incremental", "0 0 2 * * *")
	v.SetDefault("scheduler.similarity_full", "0 0 3 * * 0")
	v.SetDefault("scheduler.recommendation_refresh", "0 0 4 * * *")
	v.SetDefault("scheduler.heat_incremental", "0 0 * * * *")
	v.SetDefault("scheduler.heat_full", "0 0 5 * * 0")
}
