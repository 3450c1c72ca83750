// Package model 定义了与数据库表对应的 Go 结构体。
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList 是 []string 的数据库映射类型，在 MySQL 中以 JSON 文本存储。
type StringList []string

// Value 实现 driver.Valuer 接口。
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口。
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// AnalysisRecord 对应于数据库中的 'analysis_records' 表。
// 每次 /api/analyze 调用成功后写入一条，写入后不再修改。
type AnalysisRecord struct {
	// ID 是分析记录的唯一标识符，由服务端生成。
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// UserID 永远是认证网关解析出的调用方身份，不信任客户端传入的值。
	UserID string `gorm:"type:varchar(128);not null;index" json:"userId"`
	// ArticleExcerpt 是原文的前缀摘录（上限由配置给出，默认 500 字符）。
	ArticleExcerpt string `gorm:"type:text;not null" json:"text"`
	// Claims 是模型抽取出的可核验声明，有序。
	Claims StringList `gorm:"type:json" json:"claims"`
	// Summary 是三条要点式摘要，有序。
	Summary StringList `gorm:"type:json" json:"summary"`
	// ReliabilityScore 是 0-100 的可靠性得分。
	ReliabilityScore int `gorm:"not null" json:"reliabilityScore"`
	// SourceURL 是被分析页面的地址，可为空。
	SourceURL *string `gorm:"type:varchar(2048)" json:"url"`
	// CreatedAt 由 GORM 自动管理，是服务端时间戳。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// HistoryItem 是历史记录接口返回给前端的单条结构。
// 服务端时间戳在出口处转换为前端友好的 LocalTime。
type HistoryItem struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	ArticleExcerpt   string     `json:"text"`
	Claims           StringList `json:"claims"`
	Summary          StringList `json:"summary"`
	ReliabilityScore int        `json:"reliabilityScore"`
	SourceURL        *string    `json:"url"`
	Timestamp        LocalTime  `json:"timestamp"`
}
