package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/trade-bot/internal/adapter/gateway"
	"github.com/rl1809/trade-bot/internal/adapter/storage"
	"github.com/rl1809/trade-bot/internal/config"
	"github.com/rl1809/trade-bot/internal/core/service"
	"github.com/rl1809/trade-bot/internal/port"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	servers, err := cfg.Servers()
	if err != nil {
		logger.Error("server list resolution failed", "error", err)
		os.Exit(1)
	}

	client, err := gateway.Dial(ctx, servers, logger)
	if err != nil {
		logger.Error("gateway connection failed", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	tokens := gateway.NewTokenStore(cfg.TokenDir)
	machineToken, err := tokens.Load(cfg.Account)
	if err != nil {
		logger.Warn("trust token load failed", "error", err)
	}

	granted, err := logOnWithGuard(ctx, client, gateway.Credentials{
		Account:      cfg.Account,
		Password:     cfg.Password,
		MachineToken: machineToken,
	})
	if err != nil {
		logger.Error("logon failed", "account", cfg.Account, "error", err)
		os.Exit(1)
	}
	logger.Info("logged on", "account", cfg.Account)

	if granted != "" && granted != machineToken {
		if err := tokens.Save(cfg.Account, granted); err != nil {
			logger.Warn("trust token save failed", "error", err)
		}
	}

	client.Start()

	var gate port.Gate
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		gate = storage.NewRedisGate(rdb, cfg.Account, 0)
		logger.Info("using shared redis session gate", "addr", cfg.RedisAddr)
	} else {
		gate = storage.NewMemoryGate()
	}

	if err := client.SetStatus(ctx, port.StatusLookingToTrade); err != nil {
		logger.Warn("initial status failed", "error", err)
	}

	bot := service.NewBot(
		client.Events(),
		client, client, client, client, client,
		gate,
		cfg.CategoryTag,
		logger,
	)

	logger.Info("bot running", "account", cfg.Account)
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped", "error", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.SetStatus(shutdownCtx, port.StatusOffline); err != nil {
		logger.Warn("offline status failed", "error", err)
	}
}

// logOnWithGuard retries the logon whenever the server demands a guard code,
// prompting for a fresh one each time.
func logOnWithGuard(ctx context.Context, client *gateway.Client, creds gateway.Credentials) (string, error) {
	reader := bufio.NewReader(os.Stdin)

	for {
		token, err := client.LogOn(ctx, creds)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, gateway.ErrGuardRequired) {
			return "", err
		}

		fmt.Print("Guard code: ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			return "", fmt.Errorf("read guard code: %w", readErr)
		}
		creds.GuardCode = strings.TrimSpace(line)
	}
}
