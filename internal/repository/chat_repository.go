// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"truelens-go/internal/model"

	"gorm.io/gorm"
)

// ChatRepository 接口定义了聊天记录的持久化操作。
type ChatRepository interface {
	Create(ctx context.Context, record *model.ChatRecord) error
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]model.ChatRecord, error)
}

// chatRepository 是 ChatRepository 接口的 GORM 实现。
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建一个新的 ChatRepository 实例。
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// Create 在数据库中追加一条聊天记录。
func (r *chatRepository) Create(ctx context.Context, record *model.ChatRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindRecentByUser 按创建时间倒序返回指定用户最近的聊天记录。
func (r *chatRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]model.ChatRecord, error) {
	var records []model.ChatRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
