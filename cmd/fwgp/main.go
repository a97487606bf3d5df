// Command fwgp runs the file-watcher git pipeline: it watches a repository
// for changes, runs them through the configured plugins, and stages,
// commits, pushes, and pulls on a fixed interval.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/watchgit/fwgp/internal/circuit"
	"github.com/watchgit/fwgp/internal/config"
	"github.com/watchgit/fwgp/internal/dispatcher"
	"github.com/watchgit/fwgp/internal/logger"
	"github.com/watchgit/fwgp/internal/pipeline"
	"github.com/watchgit/fwgp/internal/plugin"
	"github.com/watchgit/fwgp/internal/statusserver"
	"github.com/watchgit/fwgp/internal/vcsadapter"
	"github.com/watchgit/fwgp/internal/watcher"

	_ "github.com/watchgit/fwgp/internal/builtinplugins"
)

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	baseDir := getEnv("FWGP_BASE_DIR", ".")
	repoPath := getEnv("FWGP_REPO_PATH", ".")
	logLevel := getEnv("FWGP_LOG_LEVEL", "info")

	logFile, err := logger.Setup(baseDir, logLevel)
	if err != nil {
		log.Fatalf("fwgp: logger setup failed: %v", err)
	}
	defer logFile.Close()

	cfg, err := config.Load(baseDir, repoPath)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to load configuration")
	}

	vcs := vcsadapter.New(cfg.RepoPath)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := vcs.InitRepo(ctx); err != nil {
		cancel()
		logger.Log.Fatal().Err(err).Msg("failed to initialize repository")
	}
	cancel()

	circuits := circuit.Open(cfg.BaseDir)

	host, err := plugin.NewHost(config.PluginSearchRoot(cfg.BaseDir))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to scan plugin search root")
	}

	disp, err := dispatcher.New(host, circuits, cfg.EnabledPlugins, dispatcher.DefaultWorkers, dispatcher.DefaultTimeout)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to resolve enabled plugins")
	}

	w, err := watcher.New(cfg.RepoPath, true)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to start watcher")
	}
	defer w.Close()

	interval := time.Duration(cfg.PollingIntervalSec * float64(time.Second))
	engine := pipeline.New(w, disp, vcs, cfg.Remote, cfg.Branch, interval)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var statusSrv *statusserver.Server
	if addr := config.StatusAddr(); addr != "" {
		tickCount := int64(0)
		statusSrv = statusserver.New(addr, func() statusserver.Snapshot {
			return statusserver.Snapshot{
				RepoRoot:      cfg.RepoPath,
				Remote:        cfg.Remote,
				Branch:        cfg.Branch,
				LoadedPlugins: cfg.EnabledPlugins,
				TickCount:     tickCount,
				LastTickAt:    time.Now().UTC().Format(time.RFC3339),
			}
		})
		engine.Observer = statusSrv
		go func() {
			if err := statusSrv.Start(); err != nil {
				logger.Log.Error().Err(err).Msg("status server exited")
			}
		}()
	}

	logger.Log.Info().
		Str("repo", cfg.RepoPath).
		Str("remote", cfg.Remote).
		Str("branch", cfg.Branch).
		Dur("interval", interval).
		Msg("pipeline starting")

	go engine.Start(runCtx)

	<-runCtx.Done()
	logger.Log.Info().Msg("shutdown signal received, stopping pipeline")
	engine.Stop()

	if statusSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := statusSrv.Stop(shutdownCtx); err != nil {
			logger.Log.Warn().Err(err).Msg("status server shutdown error")
		}
	}
}
