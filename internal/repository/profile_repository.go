// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"fmt"
	"time"
	"truelens-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository 接口定义了用户档案的持久化操作。
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error)
	// AppendHistory 向档案的 history 映射追加一个条目。
	// 这是一次局部更新，不会整体覆盖文档。
	AppendHistory(ctx context.Context, userID, analysisID string, score int, timestamp time.Time) error
}

// profileRepository 是 ProfileRepository 接口的 GORM 实现。
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建一个新的 ProfileRepository 实例。
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUserID 根据用户 ID 查找档案，不存在时返回 gorm.ErrRecordNotFound。
func (r *profileRepository) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// AppendHistory 先确保档案行存在，再用单条 JSON_SET 语句追加 history 条目。
// 数据库保证该局部更新的原子性，无需额外加锁。
func (r *profileRepository) AppendHistory(ctx context.Context, userID, analysisID string, score int, timestamp time.Time) error {
	profile := model.UserProfile{UserID: userID, History: model.HistoryMap{}}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
		return fmt.Errorf("创建用户档案失败: %w", err)
	}

	path := fmt.Sprintf(`$."%s"`, analysisID)
	err := r.db.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("user_id = ?", userID).
		Update("history", gorm.Expr(
			"JSON_SET(COALESCE(history, '{}'), ?, JSON_OBJECT('score', ?, 'timestamp', ?))",
			path, score, timestamp.Format(time.RFC3339),
		)).Error
	if err != nil {
		return fmt.Errorf("更新用户档案历史失败: %w", err)
	}
	return nil
}
