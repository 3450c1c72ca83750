// Package model 定义了与数据库表对应的 Go 结构体。
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// HistoryEntry 是用户档案 history 映射中的单个条目。
type HistoryEntry struct {
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryMap 以 JSON 形式存储 analysisID -> HistoryEntry 的映射。
type HistoryMap map[string]HistoryEntry

// Value 实现 driver.Valuer 接口。
func (m HistoryMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口。
func (m *HistoryMap) Scan(value interface{}) error {
	if value == nil {
		*m = HistoryMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for HistoryMap")
	}
}

// UserProfile 对应于数据库中的 'user_profiles' 表。
// 每次分析成功后向 history 映射中追加一个条目，档案本身从不删除。
type UserProfile struct {
	// UserID 是身份提供方分配的用户 ID，作为主键。
	UserID string `gorm:"type:varchar(128);primaryKey" json:"userId"`
	// History 记录该用户每次分析的得分与时间。
	History HistoryMap `gorm:"type:json" json:"history"`
	// CreatedAt 由 GORM 自动管理，记录创建时间。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	// UpdatedAt 由 GORM 自动管理，记录最后更新时间。
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (UserProfile) TableName() string {
	return "user_profiles"
}
