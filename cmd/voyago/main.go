// Command voyago runs the on-device travel assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/voyago-ai/voyago/internal/config"
	"github.com/voyago-ai/voyago/internal/model"
	"github.com/voyago-ai/voyago/internal/pipeline"
	"github.com/voyago-ai/voyago/internal/search"
	"github.com/voyago-ai/voyago/internal/tui"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	toolModel := model.NewHandle(
		model.RoleToolDecision,
		cfg.Models.Tool.Resource,
		newLoader(cfg, cfg.Models.Tool, logger),
		logger,
	)
	chatModel := model.NewHandle(
		model.RoleChat,
		cfg.Models.Chat.Resource,
		newLoader(cfg, cfg.Models.Chat, logger),
		logger,
	)

	searchClient := search.NewDuckDuckGo(&search.Config{
		Endpoint:   cfg.Search.Endpoint,
		MaxResults: cfg.Search.MaxResults,
		Timeout:    cfg.SearchTimeout(),
		Logger:     logger,
	})

	orch := pipeline.New(&pipeline.Config{
		ToolModel: toolModel,
		ChatModel: chatModel,
		Search:    searchClient,
		Logger:    logger,
	})
	defer orch.Close()

	// Model loading runs in the background; the UI shows progress via
	// the published Loading flag.
	go orch.LoadModels(context.Background())

	program := tea.NewProgram(tui.NewModel(orch), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("UI terminated", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newLoader picks the loader for a slot. A resource that points at a
// local directory goes through the model-directory loader (the runtime
// constructor is injected by embedding applications); anything else is
// treated as a served model name.
func newLoader(cfg *config.Config, slot config.SlotConfig, logger *zap.Logger) model.Loader {
	if info, err := os.Stat(slot.Resource); err == nil && info.IsDir() {
		return &model.DirLoader{}
	}
	return model.NewServerLoader(&model.ServerConfig{
		BaseURL:   cfg.Models.ServerURL,
		Timeout:   cfg.GenerateTimeout(),
		MaxTokens: slot.MaxTokens,
		Logger:    logger,
	})
}

// defaultConfigPath returns ~/.voyago/config.toml.
func defaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".voyago", "config.toml")
}

// newLogger builds a file-backed logger; the terminal belongs to the
// TUI.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if err := os.MkdirAll(cfg.Paths.LogsDir, 0755); err != nil {
		return nil, err
	}

	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	zcfg.OutputPaths = []string{filepath.Join(cfg.Paths.LogsDir, "voyago.log")}
	zcfg.ErrorOutputPaths = zcfg.OutputPaths

	return zcfg.Build()
}
