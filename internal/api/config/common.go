package config

// Config 配置主体
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	DB             DBConfig             `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Mongo          MongoConfig          `mapstructure:"mongo"`
	Elastic        ElasticConfig        `mapstructure:"elastic"`
	Logstash       LogstashConfig       `mapstructure:"logstash"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	KafkaCanal     KafkaCanalConsumer   `mapstructure:"kafka_canal_consumer"`
	Moderation     ModerationConfig     `mapstructure:"moderation"`
	Heat           HeatConfig           `mapstructure:"heat"`
	Similarity     SimilarityConfig     `mapstructure:"similarity"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Scheduler      SchedulerConfig      `mapstructure:"scheduler"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	Enable   bool   `mapstructure:"enable"`
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Enable    bool   `mapstructure:"enable"`
	Address   string `mapstructure:"address"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	PostIndex string `mapstructure:"post_index"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
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

type KafkaCanalConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ModerationConfig 内容审核配置
type ModerationConfig struct {
	HighSeverityThreshold float64 `mapstructure:"high_severity_threshold"`
	MidSeverityThreshold  float64 `mapstructure:"mid_severity_threshold"`
	Normalize             bool    `mapstructure:"normalize"`
}

// HeatConfig 热度计算配置
type HeatConfig struct {
	Base           float64            `mapstructure:"base"`
	HalfLifeHours  float64            `mapstructure:"half_life_hours"`
	MinDecay       float64            `mapstructure:"min_decay"`
	Weights        map[string]float64 `mapstructure:"weights"`
	PageSize       int                `mapstructure:"page_size"`
	RecentWindowH  int                `mapstructure:"recent_window_hours"`
	IncrementalCap int                `mapstructure:"incremental_cap"`
	FullCap        int                `mapstructure:"full_cap"`
}

// SimilarityConfig 用户相似度配置
type SimilarityConfig struct {
	StaticWeight   float64            `mapstructure:"static_weight"`
	BehaviorWeight float64            `mapstructure:"behavior_weight"`
	Weights        map[string]float64 `mapstructure:"weights"`
	MaxAgeHours    int                `mapstructure:"max_age_hours"`
	Workers        int                `mapstructure:"workers"`
	IncrementalCap int                `mapstructure:"incremental_cap"`
	FullCap        int                `mapstructure:"full_cap"`
	ActiveDays     int                `mapstructure:"active_days"`
}

// RecommendationConfig 用户推荐配置
type RecommendationConfig struct {
	MinScore     float64 `mapstructure:"min_score"`
	Limit        int     `mapstructure:"limit"`
	RefreshCap   int     `mapstructure:"refresh_cap"`
	CacheMinutes int     `mapstructure:"cache_minutes"`
}

// SchedulerConfig 定时任务配置，Spec 为带秒的 cron 表达式
type SchedulerConfig struct {
	Enable                bool   `mapstructure:"enable"`
	SimilarityIncremental string `mapstructure:"similarity_incremental"`
	SimilarityFull        string `mapstructure:"similarity_full"`
	RecommendationRefresh string `mapstructure:"recommendation_refresh"`
	HeatIncremental       string `mapstructure:"heat_incremental"`
	HeatFull              string `mapstructure:"heat_full"`
}
