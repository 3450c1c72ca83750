// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// AnalysisIndexTask represents the data structure for an analysis indexing job.
// 分析记录落库后由生产者发出，消费者负责把记录写入 Elasticsearch。
type AnalysisIndexTask struct {
	AnalysisID string `json:"analysis_id"`
	UserID     string `json:"user_id"`
}
