package es

import (
	"Touchstone/internal/api/config"
	"Touchstone/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// Client 未启用 ES 时为 nil
var Client *elasticsearch.TypedClient

var PostIndex string

const (
	NotFoundCode = 404
	ConflictCode = 409
)

// InitClient 连接 ES 并确认帖子索引存在，索引由搜索服务创建
func InitClient(cfg config.ElasticConfig) error {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: []string{cfg.Address},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &logger.ESTransport{Transport: http.DefaultTransport},
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	info, err := client.Info().Do(ctx)
	if err != nil {
		return fmt.Errorf("connect elasticsearch: %w", err)
	}
	exists, err := client.Indices.Exists(cfg.PostIndex).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", cfg.PostIndex, err)
	}
	if !exists {
		log.Warn("post index missing, heat and status sync will fail until it is created", "index", cfg.PostIndex)
	}

	Client = client
	PostIndex = cfg.PostIndex
	log.Info("Connected to Elasticsearch", "version", info.Version.Int, "index", cfg.PostIndex)
	return nil
}
