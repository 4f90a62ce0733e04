// container.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/config"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation/evaluationapi"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation/evaluationinfra"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation/evaluationsrv"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/fsx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/fsx/fsxlocal"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/fsx/fsxs3"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/auth"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/auth/authinfra"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user/userapi"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user/userinfra"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user/usersrv"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/logx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/project/projectinfra"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate/candidateapi"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate/candidateinfra"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate/candidatesrv"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/pipeline"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Core state
	Board *pipeline.Board

	// Services
	TokenService      auth.TokenService
	UserService       *usersrv.UserService
	CandidateService  *candidatesrv.CandidateService
	EvaluationService *evaluationsrv.EvaluationService

	// API Handlers
	AuthHandlers       *auth.AuthHandlers
	UserHandlers       *userapi.UserHandlers
	CandidateHandlers  *candidateapi.CandidateHandlers
	EvaluationHandlers *evaluationapi.EvaluationHandlers

	// Middleware
	AuthMiddleware *auth.AuthMiddleware
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing dependency container...")

	c := &Container{
		Config: cfg,
	}

	c.initInfrastructure()
	c.initServices()

	logx.Info("✅ Container initialized successfully")
	return c
}

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database Connection
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Config.Database.Host,
		c.Config.Database.Port,
		c.Config.Database.User,
		c.Config.Database.Password,
		c.Config.Database.Name,
		c.Config.Database.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("✅ Database connected")

	// 2. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required for sessions)", err)
	} else {
		logx.Info("✅ Redis connected")
	}

	// 3. File Storage Configuration (Local or S3)
	c.initFileStorage()

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initFileStorage() {
	storage := c.Config.Storage

	switch storage.Mode {
	case "s3":
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(storage.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, storage.AWSBucket, storage.KeyPrefix)
		logx.Infof("✅ S3 file system configured (bucket: %s, region: %s)", storage.AWSBucket, storage.AWSRegion)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(storage.UploadDir)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		c.FileSystem = localFS
		logx.Infof("✅ Local file system configured (path: %s)", storage.UploadDir)

	default:
		logx.Fatalf("Unknown STORAGE_MODE: %s (use 'local' or 's3')", storage.Mode)
	}
}

func (c *Container) initServices() {
	logx.Info("🗄️  Initializing repositories and services...")

	// --- Repositories ---
	userRepo := userinfra.NewPostgresUserRepository(c.DB)
	projectRepo := projectinfra.NewPostgresProjectRepository(c.DB)
	candidateRepo := candidateinfra.NewPostgresCandidateRepository(c.DB)
	evaluationRepo := evaluationinfra.NewPostgresEvaluationRepository(c.DB)

	// --- Infrastructure Services ---
	passwordSvc := authinfra.NewBcryptPasswordService(c.Config.Auth.Password.BcryptCost)
	sessionRepo := authinfra.NewRedisSessionRepository(c.Redis, c.Config.Auth.Session.ExpirationTime)
	c.TokenService = auth.NewJWTServiceFromConfig(&c.Config.Auth.JWT)

	// --- Pipeline Board ---
	// The board is the in-memory source of truth for stage ordering; it is
	// hydrated once from the database at startup.
	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	candidates, err := candidateRepo.FindAll(loadCtx)
	if err != nil {
		logx.Fatalf("Failed to load candidates for pipeline board: %v", err)
	}
	c.Board = pipeline.NewBoard(candidateRepo, c.Config.Pipeline.PersistTimeout, candidates)
	logx.Infof("✅ Pipeline board hydrated (%d candidates)", len(candidates))

	// --- Domain Services ---
	c.UserService = usersrv.NewUserService(userRepo, passwordSvc)
	c.CandidateService = candidatesrv.NewCandidateService(candidateRepo, c.Board, c.FileSystem)
	c.EvaluationService = evaluationsrv.NewEvaluationService(evaluationRepo, userRepo, projectRepo)

	// --- Middleware ---
	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService, c.Config.Auth.Cookie.AccessTokenName)

	// --- API Handlers ---
	c.AuthHandlers = auth.NewAuthHandlers(c.TokenService, userRepo, passwordSvc, sessionRepo, c.Config)
	c.UserHandlers = userapi.NewUserHandlers(c.UserService)
	c.CandidateHandlers = candidateapi.NewCandidateHandlers(c.CandidateService)
	c.EvaluationHandlers = evaluationapi.NewEvaluationHandlers(c.EvaluationService)

	logx.Info("✅ Repositories and services initialized")
}

// StartBackgroundServices launches the overdue-evaluation sweep ticker
func (c *Container) StartBackgroundServices(ctx context.Context) {
	interval := c.Config.Pipeline.OverdueSweep
	if interval <= 0 {
		logx.Warn("⚠️  Overdue sweep disabled (EVALUATION_OVERDUE_SWEEP <= 0)")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := c.EvaluationService.SweepOverdue(ctx); err != nil {
					logx.Errorf("overdue sweep: %v", err)
				}
			}
		}
	}()

	logx.Infof("✅ Overdue sweep scheduled every %s", interval)
}

// Cleanup closes infrastructure connections
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up container resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Failed to close database connection: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Failed to close Redis connection: %v", err)
		}
	}

	logx.Info("✅ Cleanup complete")
}
