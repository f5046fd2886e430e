// Package mcpserver exposes the brainstorm engine over the Model Context
// Protocol: sessions run asynchronously behind a session manager and clients
// follow them by polling get_session.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yosoyorhan/Fikir-motoru/internal/art"
	"github.com/yosoyorhan/Fikir-motoru/internal/gateway"
	"github.com/yosoyorhan/Fikir-motoru/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port         int
	TableName    string
	S3Bucket     string
	AWSRegion    string
	Engine       string // generation backend: gemini, claude, nova
	MaxSessions  int
	SecretPrefix string // e.g. "/fikir-motoru/mcp/"
}

// DefaultConfig returns a Config populated from environment variables.
func DefaultConfig() Config {
	return Config{
		Port:         8000,
		TableName:    envOr("DYNAMODB_TABLE", "fikir-motoru-ideas"),
		S3Bucket:     envOr("S3_BUCKET", ""),
		AWSRegion:    envOr("AWS_REGION", "us-east-1"),
		Engine:       envOr("GENERATION_ENGINE", "gemini"),
		MaxSessions:  5,
		SecretPrefix: envOr("SECRET_PREFIX", "/fikir-motoru/mcp/"),
	}
}

// Server is the MCP server for brainstorm sessions.
type Server struct {
	cfg      Config
	mcp      *server.MCPServer
	handlers *Handlers
	log      *slog.Logger
}

// New creates and configures the MCP server. ctx doubles as the base context
// for session goroutines; cancel it on SIGTERM for graceful shutdown.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	awsCfg, err := store.NewAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}

	// Fetch secrets if running in AWS
	if cfg.SecretPrefix != "" {
		if err := loadSecrets(ctx, awsCfg, cfg.SecretPrefix, logger); err != nil {
			logger.Warn("Failed to load secrets from Secrets Manager, falling back to env vars",
				"error", err)
		}
	}

	gen, err := gateway.New(cfg.Engine)
	if err != nil {
		return nil, err
	}

	clients := store.NewClients(awsCfg)
	ideas := store.NewStore(clients.DynamoDB, cfg.TableName)

	var archive *store.Archive
	if cfg.S3Bucket != "" {
		archive = store.NewArchive(clients.S3, cfg.S3Bucket)
	} else {
		logger.Warn("S3_BUCKET not set, transcripts will not be archived")
	}
	vault := store.NewVault(ideas, archive, logger)

	sessions := NewSessionManager(gen, vault, art.New(), cfg.MaxSessions, logger, ctx)
	handlers := NewHandlers(sessions, ideas, logger)

	mcpServer := server.NewMCPServer(
		"fikir-motoru",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	tools := ToolDefs()
	mcpServer.AddTool(tools[0], handlers.HandleStartBrainstorm)
	mcpServer.AddTool(tools[1], handlers.HandleGetSession)
	mcpServer.AddTool(tools[2], handlers.HandleSubmitInput)
	mcpServer.AddTool(tools[3], handlers.HandleCancelSession)
	mcpServer.AddTool(tools[4], handlers.HandleAcceptIdea)
	mcpServer.AddTool(tools[5], handlers.HandleRejectIdea)
	mcpServer.AddTool(tools[6], handlers.HandleListIdeas)

	return &Server{
		cfg:      cfg,
		mcp:      mcpServer,
		handlers: handlers,
		log:      logger,
	}, nil
}

// Start runs the HTTP MCP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info("Starting MCP server", "addr", addr, "engine", s.cfg.Engine)

	httpServer := server.NewStreamableHTTPServer(s.mcp,
		server.WithStateLess(true),
	)
	return httpServer.Start(addr)
}

// loadSecrets fetches API keys from Secrets Manager and sets them as env vars.
func loadSecrets(ctx context.Context, cfg aws.Config, prefix string, logger *slog.Logger) error {
	client := secretsmanager.NewFromConfig(cfg)

	secrets := map[string]string{
		"GEMINI_API_KEY":    prefix + "GEMINI_API_KEY",
		"ANTHROPIC_API_KEY": prefix + "ANTHROPIC_API_KEY",
	}

	for envVar, secretID := range secrets {
		// Skip if already set in environment
		if os.Getenv(envVar) != "" {
			continue
		}

		result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: &secretID,
		})
		if err != nil {
			logger.Info("Secret not found", "secret_id", secretID, "error", err)
			continue
		}
		if result.SecretString != nil {
			os.Setenv(envVar, *result.SecretString)
			logger.Info("Loaded secret", "secret_id", secretID)
		}
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
