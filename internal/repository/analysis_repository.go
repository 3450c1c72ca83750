// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"truelens-go/internal/model"

	"gorm.io/gorm"
)

// AnalysisRepository 接口定义了分析记录的持久化操作。
type AnalysisRepository interface {
	Create(ctx context.Context, record *model.AnalysisRecord) error
	FindByID(ctx context.Context, id string) (*model.AnalysisRecord, error)
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]model.AnalysisRecord, error)
}

// analysisRepository 是 AnalysisRepository 接口的 GORM 实现。
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 创建一个新的 AnalysisRepository 实例。
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create 在数据库中创建一条新的分析记录。
func (r *analysisRepository) Create(ctx context.Context, record *model.AnalysisRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID 根据 ID 查找一条分析记录。
func (r *analysisRepository) FindByID(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindRecentByUser 按创建时间倒序返回指定用户最近的分析记录，数量不超过 limit。
func (r *analysisRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]model.AnalysisRecord, error) {
	var records []model.AnalysisRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
