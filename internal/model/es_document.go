// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// AnalysisDocument 代表存储在 Elasticsearch 中的分析记录文档。
// 由索引管道在记录落库后写入，支撑历史记录的全文检索。
type AnalysisDocument struct {
	AnalysisID       string    `json:"analysis_id"`
	UserID           string    `json:"user_id"`
	ArticleExcerpt   string    `json:"article_excerpt"`
	Claims           []string  `json:"claims"`
	Summary          []string  `json:"summary"`
	ReliabilityScore int       `json:"reliability_score"`
	SourceURL        string    `json:"source_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
