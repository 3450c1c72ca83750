// Package pipeline 定义了分析记录索引的核心流程。
package pipeline

import (
	"context"
	"fmt"
	"truelens-go/internal/config"
	"truelens-go/internal/model"
	"truelens-go/internal/repository"
	"truelens-go/pkg/es"
	"truelens-go/pkg/log"
	"truelens-go/pkg/tasks"
)

// Processor 封装了索引任务处理的所有依赖和逻辑。
// 它从数据库加载分析记录，构建全文文档并写入 Elasticsearch。
type Processor struct {
	esCfg        config.ElasticsearchConfig
	analysisRepo repository.AnalysisRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(esCfg config.ElasticsearchConfig, analysisRepo repository.AnalysisRepository) *Processor {
	return &Processor{
		esCfg:        esCfg,
		analysisRepo: analysisRepo,
	}
}

// Process 是索引任务处理的主函数。
// 记录在任务投递前已经落库，这里只做加载和索引，失败由消费者侧重试。
func (p *Processor) Process(ctx context.Context, task tasks.AnalysisIndexTask) error {
	log.Infof("[Processor] 开始处理索引任务, AnalysisID: %s, UserID: %s", task.AnalysisID, task.UserID)

	record, err := p.analysisRepo.FindByID(ctx, task.AnalysisID)
	if err != nil {
		log.Errorf("[Processor] 加载分析记录失败, AnalysisID: %s, Error: %v", task.AnalysisID, err)
		return fmt.Errorf("加载分析记录失败: %w", err)
	}

	doc := model.AnalysisDocument{
		AnalysisID:       record.ID,
		UserID:           record.UserID,
		ArticleExcerpt:   record.ArticleExcerpt,
		Claims:           record.Claims,
		Summary:          record.Summary,
		ReliabilityScore: record.ReliabilityScore,
		CreatedAt:        record.CreatedAt,
	}
	if record.SourceURL != nil {
		doc.SourceURL = *record.SourceURL
	}

	if err := es.IndexDocument(ctx, p.esCfg.IndexName, doc); err != nil {
		log.Errorf("[Processor] 索引分析记录到Elasticsearch失败, AnalysisID: %s, Error: %v", record.ID, err)
		return fmt.Errorf("索引分析记录失败: %w", err)
	}

	log.Infof("[Processor] 索引任务处理成功, AnalysisID: %s", record.ID)
	return nil
}
