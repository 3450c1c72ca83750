// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"truelens-go/internal/model"
	"truelens-go/internal/repository"
	"truelens-go/pkg/llm"
	"truelens-go/pkg/log"

	"github.com/gorilla/websocket"
)

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// Chat 发起一次非流式问答，返回完整回复文本。
	Chat(ctx context.Context, message, userID, articleContext string) (string, error)
	// StreamResponse 通过 WebSocket 流式下发回复，结束后整体落库。
	StreamResponse(ctx context.Context, message, userID, articleContext string, ws *websocket.Conn, shouldStop func() bool) error
}

type chatService struct {
	llmClient llm.Client
	chatRepo  repository.ChatRepository
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(llmClient llm.Client, chatRepo repository.ChatRepository) ChatService {
	return &chatService{
		llmClient: llmClient,
		chatRepo:  chatRepo,
	}
}

// Chat 构建 system+user 提示词，发起一次生成调用并持久化完整交互。
func (s *chatService) Chat(ctx context.Context, message, userID, articleContext string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: missing authenticated user", ErrInvalidInput)
	}

	prompt := fmt.Sprintf("%s\n\nUser message: %s", buildSystemPrompt(articleContext), message)

	response, err := s.llmClient.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("聊天生成调用失败: %w", err)
	}

	if err := s.saveExchange(ctx, userID, message, response, articleContext); err != nil {
		return "", fmt.Errorf("保存聊天记录失败: %w", err)
	}

	return response, nil
}

// StreamResponse 以 role-based 消息流式调用 LLM，把分块包装成 JSON 下发，
// 流结束后把完整回复落库。
func (s *chatService) StreamResponse(ctx context.Context, message, userID, articleContext string, ws *websocket.Conn, shouldStop func() bool) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	messages := []llm.Message{
		{Role: "system", Content: buildSystemPrompt(articleContext)},
		{Role: "user", Content: message},
	}

	// 拦截 websocket writer 以捕获完整答案，并包装为 JSON 分块
	answerBuilder := &strings.Builder{}
	interceptor := &wsWriterInterceptor{conn: ws, writer: answerBuilder, shouldStop: shouldStop}

	if err := s.llmClient.StreamChatMessages(ctx, messages, interceptor); err != nil {
		return err
	}

	sendCompletion(ws)

	fullAnswer := answerBuilder.String()
	if len(fullAnswer) > 0 {
		// 使用后台上下文：即使原始请求被取消，也要保存已经生成完的答案
		if err := s.saveExchange(context.Background(), userID, message, fullAnswer, articleContext); err != nil {
			// 只记录错误，不返回给客户端，因为流式响应已经成功
			log.Errorf("[ChatService] 保存流式聊天记录失败: %v", err)
		}
	}

	return nil
}

func (s *chatService) saveExchange(ctx context.Context, userID, message, response, articleContext string) error {
	record := &model.ChatRecord{
		UserID:            userID,
		UserMessage:       message,
		AssistantResponse: response,
	}
	if articleContext != "" {
		record.ArticleContext = &articleContext
	}
	return s.chatRepo.Create(ctx, record)
}

// buildSystemPrompt 构建聊天的 system 提示词，可选地嵌入文章上下文段落。
func buildSystemPrompt(articleContext string) string {
	contextBlock := ""
	if articleContext != "" {
		contextBlock = fmt.Sprintf("The user is currently reading this article:\n%s\n\n", articleContext)
	}
	return fmt.Sprintf(`You are TrueLensGPT, an intelligent news verification assistant. You help users analyze articles, fact-check claims, and understand news credibility.

%s

Provide helpful, accurate, and balanced responses. Be concise but thorough.`, contextBlock)
}

// wsWriterInterceptor 是对 websocket.Conn 的封装，用于捕获写入的消息。
type wsWriterInterceptor struct {
	conn       *websocket.Conn
	writer     *strings.Builder
	shouldStop func() bool
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		// 停止标志生效：跳过下发
		return nil
	}
	w.writer.Write(data)
	// 将原始分块包装成 {"chunk":"..."}
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.conn.WriteMessage(messageType, b)
}

// sendCompletion 发送完成通知 JSON
func sendCompletion(ws *websocket.Conn) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"timestamp": time.Now().UnixMilli(),
		"date":      time.Now().Format("2006-01-02T15:04:05"),
	}
	b, _ := json.Marshal(notif)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
