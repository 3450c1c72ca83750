// Package model 包含了应用的数据模型定义。
package model

import "time"

// PageMetadata 是内容抽取器从页面读出的元数据，缺失项为空字符串。
type PageMetadata struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ArticleSnapshot 是消息中继缓存的最近一次页面抽取结果。
// 每次页面加载整体覆盖，生命周期到下一次导航或中继重启为止。
type ArticleSnapshot struct {
	// Action 是产生该快照的消息动作（articleDetected 或 articleNotFound）。
	Action string `json:"action"`
	// Text 是抽取出的正文，articleNotFound 时为空。
	Text string `json:"text,omitempty"`
	// Metadata 是页面元数据，可能缺失。
	Metadata *PageMetadata `json:"metadata,omitempty"`
	// DetectedAt 是快照产生的时间。
	DetectedAt time.Time `json:"detectedAt"`
}
