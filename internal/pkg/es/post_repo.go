package es

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/goccy/go-json"
)

// PostRepo 帖子索引的局部更新，文档本身由内容服务写入
type PostRepo interface {
	UpdateHeatScore(ctx context.Context, id uint64, score float64) error
	UpdateStatus(ctx context.Context, id uint64, status int8) error
}

type PostRepoImpl struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewPostRepo(client *elasticsearch.TypedClient, index string) PostRepo {
	return &PostRepoImpl{client: client, index: index}
}

func (s *PostRepoImpl) UpdateHeatScore(ctx context.Context, id uint64, score float64) error {
	return s.partialUpdate(ctx, id, map[string]interface{}{"heat_score": score})
}

func (s *PostRepoImpl) UpdateStatus(ctx context.Context, id uint64, status int8) error {
	return s.partialUpdate(ctx, id, map[string]interface{}{"status": status})
}

// partialUpdate 文档不存在时忽略
func (s *PostRepoImpl) partialUpdate(ctx context.Context, id uint64, fields map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{"doc": fields})
	if err != nil {
		return err
	}

	_, err = s.client.Update(s.index, strconv.FormatUint(id, 10)).
		Raw(bytes.NewReader(body)).
		Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && (e.Status == NotFoundCode || e.Status == ConflictCode) {
			return nil
		}
		return fmt.Errorf("post index: partial update %d: %w", id, err)
	}
	return nil
}
