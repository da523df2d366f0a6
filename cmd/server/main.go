package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codetrack/internal/api"
	"codetrack/internal/app/service"
	"codetrack/internal/app/worker"
	"codetrack/internal/common/security"
	"codetrack/internal/domain/repository"
	"codetrack/internal/platform/config"
	"codetrack/internal/platform/database"
	"codetrack/internal/platform/githubstore"
	"codetrack/internal/platform/sheets"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// 2. Initialize Database
	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database connected")

	// 3. Initialize external clients. Clients are constructed here and
	// injected; missing credentials fail at startup.
	sheetsClient, err := sheets.NewClient(ctx, cfg.GoogleServiceAccountKeyBase64)
	if err != nil {
		logger.Fatal("sheets client construction failed", zap.Error(err))
	}
	store := githubstore.NewClient(cfg.DefaultBranch)

	cipher, err := security.NewTokenCipher(cfg.TokenEncSecret, cfg.TokenEncSalt)
	if err != nil {
		logger.Fatal("token cipher construction failed", zap.Error(err))
	}
	signer, err := security.NewStateSigner(cfg.StateSigningSecret, cfg.StateTTL)
	if err != nil {
		logger.Fatal("state signer construction failed", zap.Error(err))
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GithubClientID,
		ClientSecret: cfg.GithubClientSecret,
		RedirectURL:  cfg.GithubCallbackURL,
		Scopes:       []string{"repo"},
		Endpoint:     githuboauth.Endpoint,
	}

	// 4. Initialize Repositories
	sheetRepo := repository.NewPgSheetRepository(db)
	questionRepo := repository.NewPgQuestionRepository(db)
	studentRepo := repository.NewPgStudentRepository(db)
	submissionRepo := repository.NewPgSubmissionRepository(db)

	// 5. Initialize Services
	mappingService := service.NewMappingService(sheetRepo, questionRepo, sheetsClient,
		cfg.SheetOriginColumn, cfg.SheetExcludedTabs, logger)
	matcherService := service.NewMatcherService(questionRepo)
	studentService := service.NewStudentService(studentRepo, sheetsClient, cipher, logger)
	authService := service.NewAuthService(studentRepo, sheetRepo, oauthCfg, signer, cipher,
		cfg.DefaultRepoName, logger)
	submissionService := service.NewSubmissionService(studentService, matcherService, store,
		sheetsClient, submissionRepo, logger)

	// 6. Initialize Sync Worker (as a goroutine)
	syncWorker := worker.NewSyncWorker(mappingService, cfg.SyncInterval, logger)
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	go syncWorker.Start(workerCtx)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(cfg.AdminAPIKey, mappingService, authService, submissionService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down server")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server and worker stopped gracefully")
}
