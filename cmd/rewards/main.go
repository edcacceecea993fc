// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewards/api"
	"github.com/vechain/rewards/api/admin"
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/metrics"
	"github.com/vechain/rewards/program"
	"github.com/vechain/rewards/reverts"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Rewards",
		Usage:     "Staking rewards accounting service",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiRateLimitFlag,
			apiRateBurstFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			logFileFlag,
			cacheFlag,
			recordCacheFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			disableNTPFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:      "inspect",
				Usage:     "dump the pool or mining stored at an address",
				ArgsUsage: "<address>",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					recordCacheFlag,
					verbosityFlag,
				},
				Action: inspectAction,
			},
			{
				Name:  "verify",
				Usage: "check every stored record for consistency",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					recordCacheFlag,
					verbosityFlag,
				},
				Action: verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	dataDir := makeDataDir(ctx)
	mainDB := openMainDB(ctx, dataDir)
	defer func() { logger.Info("closing state database..."); mainDB.Close() }()

	logDB := openLogDB(dataDir)
	defer func() { logger.Info("closing event database..."); logDB.Close() }()

	st, err := openState(ctx, mainDB)
	if err != nil {
		return err
	}
	if err := applyGenesis(st, ctx.String(genesisFlag.Name)); err != nil {
		return err
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	prog := program.New(st, logDB, nil)
	handler, closeSubs := api.New(prog, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      &apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		RateLimit:            ctx.Float64(apiRateLimitFlag.Name),
		RateBurst:            ctx.Int(apiRateBurstFlag.Name),
	})
	defer closeSubs()
	apiURL, stopAPI, err := serve(ctx.String(apiAddrFlag.Name), handler, time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond)
	if err != nil {
		return errors.WithMessage(err, "api server")
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		url, stop, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.WithMessage(err, "metrics server")
		}
		defer func() { logger.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, &apiLogs)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); stop() }()
		adminURL = url
	}

	g, gctx := errgroup.WithContext(exitSignal)
	if !ctx.Bool(disableNTPFlag.Name) {
		g.Go(func() error { return watchClock(gctx) })
	}

	printStartupMessage(dataDir, apiURL, metricsURL, adminURL, logDB.DriverVersion())

	<-exitSignal.Done()
	return g.Wait()
}

func inspectAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errors.New("expect exactly one address")
	}
	addr, err := base.ParseAddress(ctx.Args().First())
	if err != nil {
		return errors.WithMessage(err, "parse address")
	}

	mainDB := openMainDB(ctx, makeDataDir(ctx))
	defer mainDB.Close()
	st, err := openState(ctx, mainDB)
	if err != nil {
		return err
	}
	stage := st.NewStage()

	if pool, err := stage.Pool(addr); err == nil {
		fmt.Print(spew.Sdump(pool))
		return nil
	} else if !errors.Is(err, reverts.ErrAccountNotFound) {
		return err
	}
	mining, err := stage.Mining(addr)
	if err != nil {
		return err
	}
	fmt.Print(spew.Sdump(mining))
	return nil
}

func verifyAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	mainDB := openMainDB(ctx, makeDataDir(ctx))
	defer mainDB.Close()
	st, err := openState(ctx, mainDB)
	if err != nil {
		return err
	}

	fmt.Println(">> Verifying state <<")
	problems, err := verifyState(st, true)
	if err != nil {
		return err
	}
	for _, p := range problems {
		fmt.Println(p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d inconsistencies found", len(problems))
	}
	fmt.Println("state is consistent")
	return nil
}

func printStartupMessage(dataDir, apiURL, metricsURL, adminURL, sqliteVersion string) {
	fmt.Printf(`Starting %v
    Data dir    [ %v ]
    SQLite      [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin       [ %v ]
`,
		fullVersion(),
		dataDir,
		sqliteVersion,
		apiURL,
		func() string {
			if metricsURL == "" {
				return "Disabled"
			}
			return metricsURL
		}(),
		func() string {
			if adminURL == "" {
				return "Disabled"
			}
			return adminURL
		}(),
	)
}
