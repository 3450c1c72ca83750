// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"truelens-go/internal/model"

	"gorm.io/gorm"
)

// ReportRepository 接口定义了不实报告的持久化操作。
type ReportRepository interface {
	Create(ctx context.Context, report *model.InaccuracyReport) error
}

// reportRepository 是 ReportRepository 接口的 GORM 实现。
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建一个新的 ReportRepository 实例。
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create 在数据库中创建一条不实报告，初始状态为 pending。
func (r *reportRepository) Create(ctx context.Context, report *model.InaccuracyReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}
