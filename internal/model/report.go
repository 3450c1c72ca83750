// Package model 包含了应用的数据模型定义。
package model

import "time"

// 不实报告的状态枚举。后续状态流转由运营侧系统负责，这里只写入初始态。
const (
	ReportStatusPending = "pending"
)

// InaccuracyReport 对应于数据库中的 'inaccuracy_reports' 表。
// 用户对某次分析结果提交的不实反馈。
type InaccuracyReport struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// UserID 永远是认证网关解析出的调用方身份。
	UserID string `gorm:"type:varchar(128);not null;index" json:"userId"`
	// ArticleExcerpt 是相关文章的前缀摘录，可能为空字符串。
	ArticleExcerpt string `gorm:"type:text" json:"articleText"`
	// Report 是用户填写的反馈正文。
	Report string `gorm:"type:text;not null" json:"report"`
	// ReliabilityScore 是用户提交时看到的得分，可为空。
	ReliabilityScore *int `gorm:"default:null" json:"reliabilityScore"`
	// Status 初始为 pending。
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (InaccuracyReport) TableName() string {
	return "inaccuracy_reports"
}
