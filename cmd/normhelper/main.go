package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/normhelper/internal/ai"
	"github.com/xxxsen/normhelper/internal/config"
	"github.com/xxxsen/normhelper/internal/docstore"
	"github.com/xxxsen/normhelper/internal/handler"
	"github.com/xxxsen/normhelper/internal/job"
	"github.com/xxxsen/normhelper/internal/middleware"
	"github.com/xxxsen/normhelper/internal/retrieval"
	"github.com/xxxsen/normhelper/internal/schedule"
	"github.com/xxxsen/normhelper/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "normhelper",
		Short: "normhelper backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run normhelper server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("doc_store", cfg.DocStore.Type),
		zap.String("completion_provider", cfg.Completion.Provider),
	)

	store, err := docstore.New(cfg.DocStore)
	if err != nil {
		return fmt.Errorf("init doc store: %w", err)
	}
	provider, err := ai.NewProvider(cfg.Completion.Provider, completionArgs(cfg))
	if err != nil {
		return fmt.Errorf("init completion provider: %w", err)
	}
	retriever := retrieval.NewClient(retrieval.ClientConfig{
		APIKey:               cfg.Retrieval.APIKey,
		BaseURL:              cfg.Retrieval.BaseURL,
		TopK:                 cfg.Retrieval.TopK,
		MaxChunksPerDocument: cfg.Retrieval.MaxChunksPerDocument,
		Rerank:               cfg.Retrieval.Rerank,
	})

	formatter := service.NewCitationFormatter(provider, cfg.Completion.FormatModels)
	answers := service.NewAnswerService(store, provider, cfg.Completion.Models,
		time.Duration(cfg.AnswerCacheTTL)*time.Minute)
	search := service.NewSearchService(retriever, formatter)

	deps := handler.RouterDeps{
		Ask:     handler.NewAskHandler(answers, search),
		Search:  handler.NewSearchHandler(search),
		Catalog: handler.NewCatalogHandler(answers),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			middleware.SecureHeaders(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.CatalogCronSpec != "" {
		if err := scheduler.AddJob(job.NewCatalogCheckJob(store), cfg.CatalogCronSpec); err != nil {
			return fmt.Errorf("schedule catalog check: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening",
		zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

// completionArgs merges the provider-specific config block with the
// top-level attribution settings so the provider sees one flat object.
func completionArgs(cfg *config.Config) interface{} {
	args := map[string]interface{}{}
	if cfg.Completion.Data != nil {
		if data, err := json.Marshal(cfg.Completion.Data); err == nil {
			_ = json.Unmarshal(data, &args)
		}
	}
	if _, ok := args["http_referer"]; !ok && cfg.SiteURL != "" {
		args["http_referer"] = cfg.SiteURL
	}
	if _, ok := args["x_title"]; !ok && cfg.AppTitle != "" {
		args["x_title"] = cfg.AppTitle
	}
	if _, ok := args["timeout"]; !ok && cfg.Completion.Timeout > 0 {
		args["timeout"] = cfg.Completion.Timeout
	}
	return args
}
