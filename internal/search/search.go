// Package search 课表标题/描述的全文索引（Meilisearch）。
//
// 索引只负责把关键词解析为候选 id 集合；可见性与调用方过滤始终由数据库查询施加。
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/rioanand02/education-scheduler-api/config"
	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/pkg/breaker"
)

// ErrTooManyHits 命中数达到上限，候选集合可能被截断，调用方应回退到数据库检索
var ErrTooManyHits = errors.New("检索命中数超过上限")

// Document 索引文档
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Index Meilisearch 课表索引，所有远程调用经过熔断器
type Index struct {
	index     meilisearch.IndexManager
	cb        *gobreaker.CircuitBreaker
	sanitizer *bluemonday.Policy
	maxHits   int64
	logger    *zap.Logger
}

// NewIndex 创建索引客户端
func NewIndex(cfg *config.SearchConfig, logger *zap.Logger) *Index {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	return newIndex(client.Index(cfg.Index), cfg.MaxHits, logger)
}

func newIndex(index meilisearch.IndexManager, maxHits int64, logger *zap.Logger) *Index {
	if maxHits <= 0 {
		maxHits = 1000
	}
	return &Index{
		index:     index,
		cb:        breaker.New("meilisearch", breaker.DefaultSettings(), logger),
		sanitizer: bluemonday.StrictPolicy(),
		maxHits:   maxHits,
		logger:    logger,
	}
}

// EnsureSettings 设置可检索字段；失败仅记录日志，不阻止启动
func (i *Index) EnsureSettings() {
	attrs := []string{"title", "description"}
	if _, err := i.index.UpdateSearchableAttributes(&attrs); err != nil {
		i.logger.Warn("更新检索字段失败", zap.Error(err))
	}
}

// Upsert 写入或覆盖课表文档
func (i *Index) Upsert(ctx context.Context, s *model.Schedule) error {
	doc := i.toDocument(s)
	_, err := i.cb.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return i.index.AddDocuments([]Document{doc}, strPtr("id"))
	})
	if err != nil {
		return fmt.Errorf("索引课表 %s 失败: %w", s.ScheduleID, err)
	}
	return nil
}

// Delete 删除课表文档
func (i *Index) Delete(ctx context.Context, id string) error {
	_, err := i.cb.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return i.index.DeleteDocument(id)
	})
	if err != nil {
		return fmt.Errorf("删除索引 %s 失败: %w", id, err)
	}
	return nil
}

// SearchIDs 将关键词解析为候选课表 id
// 熔断打开时返回 gobreaker.ErrOpenState；命中数达到上限返回 ErrTooManyHits
func (i *Index) SearchIDs(ctx context.Context, q string) ([]string, error) {
	res, err := i.cb.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return i.index.Search(q, &meilisearch.SearchRequest{
			Limit:                i.maxHits,
			AttributesToRetrieve: []string{"id"},
		})
	})
	if err != nil {
		return nil, err
	}

	resp, ok := res.(*meilisearch.SearchResponse)
	if !ok || resp == nil {
		return nil, fmt.Errorf("检索返回了非预期结果 %T", res)
	}
	ids, err := hitIDs(resp.Hits)
	if err != nil {
		return nil, err
	}
	if int64(len(ids)) >= i.maxHits {
		return nil, ErrTooManyHits
	}
	return ids, nil
}

// hitIDs 从命中结果中提取 id；经 JSON 往返以兼容不同版本的 Hits 表示
func hitIDs(hits interface{}) ([]string, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, fmt.Errorf("解析检索结果失败: %w", err)
	}
	var docs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("解析检索结果失败: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.ID != "" {
			ids = append(ids, d.ID)
		}
	}
	return ids, nil
}

func (i *Index) toDocument(s *model.Schedule) Document {
	return Document{
		ID:          s.ScheduleID,
		Title:       i.clean(s.Title),
		Description: i.clean(s.Description),
	}
}

// clean 去除 HTML 标签并还原实体，避免标记文本进入索引
func (i *Index) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(i.sanitizer.Sanitize(text)))
}

func strPtr(s string) *string { return &s }
