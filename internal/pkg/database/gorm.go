package database

import (
	"Touchstone/internal/api/config"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewGormDB 连接池参数为 0 时使用默认值
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:                 logger.NewGormLogger(),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(orDefault(cfg.MaxIdle, 10))
	sqlDB.SetMaxOpenConns(orDefault(cfg.MaxOpen, 50))
	sqlDB.SetConnMaxLifetime(time.Duration(orDefault(cfg.MaxLifetime, 60)) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("Database connection established successfully.")
	return db, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Migrate 仅迁移本服务拥有的表，其余表由 CRUD 服务维护
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.ModerationRule{},
		&model.SensitiveTerm{},
		&model.ModerationLog{},
		&model.UserModerationStat{},
		&model.ReviewQueueItem{},
		&model.UserSimilarity{},
		&model.UserRecommendation{},
	)
}
