// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"truelens-go/internal/config"
	"truelens-go/internal/handler"
	"truelens-go/internal/middleware"
	"truelens-go/internal/model"
	"truelens-go/internal/pipeline"
	"truelens-go/internal/repository"
	"truelens-go/internal/service"
	"truelens-go/pkg/database"
	"truelens-go/pkg/es"
	"truelens-go/pkg/kafka"
	"truelens-go/pkg/llm"
	"truelens-go/pkg/log"
	"truelens-go/pkg/search"
	"truelens-go/pkg/storage"
	"truelens-go/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// maxBodyBytes 是请求体大小上限。文章正文可能很大，但也要有边界。
const maxBodyBytes = 50 << 20 // 50MB

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储、ES 与 Kafka
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.AutoMigrate(
		&model.AnalysisRecord{},
		&model.UserProfile{},
		&model.ChatRecord{},
		&model.InaccuracyReport{},
	)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	analysisRepo := repository.NewAnalysisRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)
	chatRepo := repository.NewChatRepository(database.DB)
	reportRepo := repository.NewReportRepository(database.DB)

	// 5. 初始化 Service (依赖注入)
	verifier := token.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience)
	llmClient := llm.NewClient(cfg.LLM)
	searchClient := search.NewClient(cfg.Search)
	analysisService := service.NewAnalysisService(
		llmClient,
		searchClient,
		analysisRepo,
		profileRepo,
		cfg.Analysis,
		storage.ArchiveArticleText,
		kafka.ProduceIndexTask,
	)
	chatService := service.NewChatService(llmClient, chatRepo)
	reportService := service.NewReportService(reportRepo, cfg.Analysis)
	historySearcher := func(ctx context.Context, userID, query string, size int) ([]model.AnalysisDocument, error) {
		return es.SearchAnalyses(ctx, cfg.Elasticsearch.IndexName, userID, query, size)
	}
	userService := service.NewUserService(analysisRepo, profileRepo, historySearcher, cfg.Analysis)

	// 6. 初始化索引管道并启动后台 Kafka 消费者
	processor := pipeline.NewProcessor(cfg.Elasticsearch, analysisRepo)
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger())
	// 统一 500 响应，不向客户端泄漏内部细节
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorf("panic recovered: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORS.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		c.Next()
	})

	// 8. 注册路由
	healthHandler := handler.NewHealthHandler()
	analyzeHandler := handler.NewAnalyzeHandler(analysisService)
	chatHandler := handler.NewChatHandler(chatService, verifier)
	reportHandler := handler.NewReportHandler(reportService)
	userHandler := handler.NewUserHandler(userService)

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimiter(cfg.RateLimit))
	{
		authed := api.Group("/")
		authed.Use(middleware.AuthMiddleware(verifier))
		{
			authed.POST("/analyze", analyzeHandler.Analyze)
			authed.POST("/chat", chatHandler.Chat)
			authed.POST("/report-inaccuracy", reportHandler.SubmitReport)
			authed.GET("/user/history", userHandler.GetHistory)
			authed.GET("/user/history/search", userHandler.SearchHistory)
			authed.GET("/user/profile", userHandler.GetProfile)
			authed.GET("/chat/ws-token", chatHandler.GetWebsocketStopToken)
		}
		// WebSocket 在路径参数里携带身份令牌，由处理函数自行校验
		api.GET("/chat/ws/:token", chatHandler.HandleWS)
	}

	// 未匹配的路由统一返回 404 JSON
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// Kafka 消费者是一个循环，会在程序退出时自然结束，
	// 不需要额外的关闭通道。
	log.Info("服务已优雅关闭")
}
