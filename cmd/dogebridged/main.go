package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/config"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/bridge"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/genericbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/managerset"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/manualclaim"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/mintbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/txobuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/wormhole"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/logging"
	telemetry "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/otel"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

const serviceName = "dogebridged"

func main() {
	cfgPath := flag.String("config", "./config.toml", "path to node configuration")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.SetupWithFile(serviceName, cfg.Environment, logging.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("node stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids, err := cfg.Programs.IDs()
	if err != nil {
		return err
	}
	if cfg.Telemetry.Traces {
		otelCfg := cfg.Telemetry.OTel(serviceName, cfg.Environment)
		otelCfg.BridgeProgram = ids.Bridge.String()
		shutdown, err := telemetry.Init(ctx, otelCfg)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		logger.Info("telemetry enabled",
			"endpoint", cfg.Telemetry.Endpoint,
			"insecure", cfg.Telemetry.Insecure,
			"headers", cfg.Telemetry.Headers)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "accounts"))
	if err != nil {
		return fmt.Errorf("open accounts db: %w", err)
	}
	defer db.Close()

	verifier, err := cfg.Verifier.Build()
	if err != nil {
		return err
	}
	keys, err := cfg.Verifier.ProgramKeys()
	if err != nil {
		return err
	}

	hst := host.New(db)
	hst.SetLogger(logger)
	if err := registerPrograms(hst, ids, verifier, keys); err != nil {
		return err
	}
	logger.Info("programs registered",
		"bridge", ids.Bridge.String(),
		"verifier", cfg.Verifier.Mode,
		"data_dir", cfg.DataDir)

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           newRouter(&server{host: hst, ids: ids, logger: logger}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// registerPrograms deploys every bridge program on hst.
func registerPrograms(hst *host.Host, ids common.ProgramIDs, verifier zk.Verifier, keys zk.ProgramKeys) error {
	for _, p := range []host.Program{
		token.NewProgram(),
		token.NewAssociatedProgram(),
		mintbuffer.NewProgram(ids.MintBuffer),
		txobuffer.NewProgram(ids.TxoBuffer),
		genericbuffer.NewProgram(ids.GenericBuffer),
		managerset.NewProgram(ids.ManagerSet),
		wormhole.NewProgram(ids.Wormhole),
		bridge.NewProgram(ids, verifier, keys),
		manualclaim.NewProgram(ids, verifier, keys.ManualClaim),
	} {
		if err := hst.Register(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Name(), err)
		}
	}
	return nil
}
