// Package search 提供了一个与外部网页搜索 API（Serper 风格）交互的客户端。
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"truelens-go/internal/config"
)

// OrganicResult 代表一条自然搜索结果（非广告位）。
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client 定义了网页搜索客户端的接口。
type Client interface {
	// Search 对给定查询执行一次搜索，返回自然结果列表。
	Search(ctx context.Context, query string) ([]OrganicResult, error)
	// Enabled 报告搜索功能是否配置可用（API key 缺失时整体关闭）。
	Enabled() bool
}

type serperClient struct {
	cfg    config.SearchConfig
	client *http.Client
}

// NewClient 创建一个新的搜索客户端实例。
func NewClient(cfg config.SearchConfig) Client {
	return &serperClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *serperClient) Enabled() bool {
	return c.cfg.APIKey != ""
}

type searchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type searchResponse struct {
	Organic []OrganicResult `json:"organic"`
}

// Search 调用搜索 API 并解析自然结果。
func (c *serperClient) Search(ctx context.Context, query string) ([]OrganicResult, error) {
	reqBody := searchRequest{Query: query, Num: c.cfg.NumResults}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/search", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call search api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return searchResp.Organic, nil
}
