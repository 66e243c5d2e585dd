// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/streampool/streampool/api"
	"github.com/streampool/streampool/config"
	"github.com/streampool/streampool/eventdb"
	"github.com/streampool/streampool/kvdb"
	"github.com/streampool/streampool/metrics"
	"github.com/streampool/streampool/pool"
	"github.com/streampool/streampool/state"
	"github.com/streampool/streampool/token"
)

var (
	version   = "1.0.0"
	gitCommit string

	logger = log.New("pkg", "main")
)

func fullVersion() string {
	if gitCommit == "" {
		return version
	}
	return fmt.Sprintf("%s-%.8s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "streampool",
		Usage:     "multi-token staking pool with streaming reward accounting",
		Copyright: "2026 The StreamPool developers",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			apiAddrFlag,
			apiCORSFlag,
			verbosityFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	initLogger(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return err
	}

	kv, err := kvdb.NewLevelDB(filepath.Join(dataDir, "state.db"), kvdb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 128,
	})
	if err != nil {
		return err
	}
	defer kv.Close()

	events, err := eventdb.New(filepath.Join(dataDir, "events.db"))
	if err != nil {
		return err
	}
	defer events.Close()

	engine := pool.New(config.PoolAddress, state.New(kv), newSoloBank(cfg))
	status, err := engine.Status()
	if err != nil {
		return err
	}
	if !status.Initialized {
		if err := engine.Initialize(cfg.StakedToken, cfg.ShareToken, cfg.Treasury, cfg.TokenAdmin, cfg.RewardTokens); err != nil {
			return err
		}
		logger.Info("pool initialized", "stakedToken", cfg.StakedToken, "rewardTokens", len(cfg.RewardTokens))
	}
	engine.SetRecorder(events)

	exitCtx := handleExitSignal()
	var group errgroup.Group

	apiSrv := &http.Server{
		Addr:    ctx.String(apiAddrFlag.Name),
		Handler: api.New(engine, events, ctx.String(apiCORSFlag.Name)),
	}
	group.Go(func() error {
		logger.Info("API started", "addr", apiSrv.Addr)
		if err := apiSrv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var metricsSrv *http.Server
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsSrv = &http.Server{
			Addr:    ctx.String(metricsAddrFlag.Name),
			Handler: metrics.HTTPHandler(),
		}
		group.Go(func() error {
			logger.Info("metrics started", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-exitCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return apiSrv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// newSoloBank builds an in-memory bank seeded with balances, so a fresh
// instance has value to stake and distribute.
func newSoloBank(cfg *config.Config) *token.MemBank {
	supply := new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
	bank := token.NewMemBank()
	_ = bank.Mint(cfg.StakedToken, cfg.Treasury, supply)
	for _, rewardToken := range cfg.RewardTokens {
		_ = bank.Mint(rewardToken, cfg.Treasury, supply)
	}
	return bank
}
