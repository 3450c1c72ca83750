// Package model 包含了应用的数据模型定义。
package model

import "time"

// ChatRecord 对应于数据库中的 'chat_records' 表。
// 每次问答交互完整落库一条，只追加不修改。
type ChatRecord struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            string    `gorm:"type:varchar(128);not null;index" json:"userId"`
	UserMessage       string    `gorm:"type:text;not null" json:"userMessage"`
	AssistantResponse string    `gorm:"type:text;not null" json:"assistantResponse"`
	ArticleContext    *string   `gorm:"type:text" json:"articleContext"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatRecord) TableName() string {
	return "chat_records"
}
