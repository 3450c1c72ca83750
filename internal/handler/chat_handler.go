// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"truelens-go/internal/middleware"
	"truelens-go/internal/service"
	"truelens-go/pkg/log"
	"truelens-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 跨源由外层 CORS 策略控制
	},
}

// ChatHandler 负责处理聊天请求，包括一问一答与 WebSocket 流式两种形态。
type ChatHandler struct {
	chatService   service.ChatService
	verifier      *token.Verifier
	stopToken     string
	stopTokenLock sync.Mutex
	// 每连接停止标志
	stopFlags sync.Map // key: session pointer string, value: bool
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService, verifier *token.Verifier) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		verifier:    verifier,
	}
}

// ChatRequest 定义了聊天 API 的请求体结构。
type ChatRequest struct {
	Message        string `json:"message"`
	ArticleContext string `json:"articleContext"`
}

// Chat 处理 POST /api/chat 请求，返回完整回复。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	userID := middleware.UserIDFromContext(c)
	response, err := h.chatService.Chat(c.Request.Context(), req.Message, userID, req.ArticleContext)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}
		log.Errorf("Chat: failed for user '%s', error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": response,
		"success":  true,
	})
}

// GetWebsocketStopToken 返回一个可用于中断流式回复的指令令牌。
func (h *ChatHandler) GetWebsocketStopToken(c *gin.Context) {
	h.stopTokenLock.Lock()
	defer h.stopTokenLock.Unlock()
	// 多实例部署时应存入 Redis，这里使用单一轮换令牌
	h.stopToken = "WSS_STOP_CMD_" + token.GenerateRandomString(16)
	c.JSON(http.StatusOK, gin.H{"cmdToken": h.stopToken, "success": true})
}

// wsMessage 是 WebSocket 入站消息的结构。
type wsMessage struct {
	Type             string `json:"type"`
	Message          string `json:"message"`
	ArticleContext   string `json:"articleContext"`
	InternalCmdToken string `json:"_internal_cmd_token"`
}

// HandleWS 处理一个传入的 WebSocket 连接。
// 浏览器的 WebSocket API 无法设置请求头，身份令牌通过路径参数传入。
func (h *ChatHandler) HandleWS(c *gin.Context) {
	tokenString := c.Param("token")
	userID, err := h.verifier.VerifyIDToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", userID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// 非 JSON 消息按纯文本问题处理
			msg = wsMessage{Message: string(raw)}
		}

		// 停止指令: {"type":"stop","_internal_cmd_token":"..."}
		if msg.Type == "stop" {
			h.stopTokenLock.Lock()
			valid := msg.InternalCmdToken != "" && msg.InternalCmdToken == h.stopToken
			h.stopTokenLock.Unlock()
			if valid {
				h.stopFlags.Store(sessionKey(conn), true)
				resp := map[string]interface{}{"type": "stop", "message": "Response stopped"}
				b, _ := json.Marshal(resp)
				_ = conn.WriteMessage(websocket.TextMessage, b)
			}
			continue
		}

		shouldStop := func() bool {
			v, ok := h.stopFlags.Load(sessionKey(conn))
			return ok && v.(bool)
		}
		// 清除上一轮的停止标志
		h.stopFlags.Delete(sessionKey(conn))

		err = h.chatService.StreamResponse(c.Request.Context(), msg.Message, userID, msg.ArticleContext, conn, shouldStop)
		if err != nil {
			log.Errorf("处理流式响应失败: %v", err)
			errResp := map[string]string{"error": "Failed to process chat message"}
			b, _ := json.Marshal(errResp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			break
		}
	}
}

func sessionKey(conn *websocket.Conn) string {
	return fmt.Sprintf("%p", conn)
}
