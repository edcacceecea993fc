// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewards/genesis"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/metrics"
	"github.com/vechain/rewards/state"
)

// maxClockOffset is the tolerated drift; rewards accrue per UTC day.
const maxClockOffset = time.Minute

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("invalid value %d, exceeds max int", val)
	}
	return int(val), nil
}

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	verbosity, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, verbosityFlag.Name)
	}
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(verbosity))

	var (
		out      io.Writer = os.Stderr
		useColor           = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	)
	if file := ctx.String(logFileFlag.Name); file != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 10,
			Compress:   true,
		})
		useColor = false
	}

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(out, lvl)
	} else {
		handler = log.NewTerminalHandlerWithLevel(out, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl, nil
}

// copy from go-ethereum
func defaultDataDir() string {
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.vechain.rewards")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.rewards")
		}
		return filepath.Join(home, ".org.vechain.rewards")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	cacheMB, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		fatal(fmt.Sprintf("parse cache flag: %v", err))
	}
	cacheMB = normalizeCacheSize(cacheMB)
	logger.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open state database [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/4 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 4)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 1024 {
		return 1024
	}
	return n
}

func openLogDB(dataDir string) *logdb.LogDB {
	dir := filepath.Join(dataDir, "events.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open event database [%v]: %v", dir, err))
	}
	return db
}

func openState(ctx *cli.Context, db *lvldb.LevelDB) (*state.State, error) {
	size, err := readIntFromUInt64Flag(ctx.Uint64(recordCacheFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, recordCacheFlag.Name)
	}
	return state.New(db, size)
}

// applyGenesis writes the genesis file into st, unless st already holds pools.
func applyGenesis(st *state.State, path string) error {
	if path == "" {
		return nil
	}
	pools, err := st.Pools()
	if err != nil {
		return err
	}
	if len(pools) > 0 {
		logger.Info("state initialized, genesis skipped", "pools", len(pools))
		return nil
	}
	gene, err := genesis.Load(path)
	if err != nil {
		return err
	}
	stage := st.NewStage()
	created, err := gene.Build(stage)
	if err != nil {
		return errors.WithMessage(err, "build genesis")
	}
	if err := stage.Commit(); err != nil {
		return errors.WithMessage(err, "commit genesis")
	}
	logger.Info("genesis applied", "accounts", len(gene.Accounts), "pools", len(created))
	return nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// serve runs handler on addr until the returned func is called.
func serve(addr string, handler http.Handler, timeout time.Duration) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen [%v]", addr)
	}
	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var g errgroup.Group
	g.Go(func() error {
		srv.Serve(listener)
		return nil
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		g.Wait()
	}, nil
}

// handleAPITimeout bounds the request context. Subscriptions are long lived
// and keep theirs.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/subscriptions") {
			h.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func startMetricsServer(addr string) (string, func(), error) {
	return serve(addr, metrics.HTTPHandler(), 0)
}

// watchClock queries pool.ntp.org hourly until ctx is done.
func watchClock(ctx context.Context) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		checkClockOffset()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > maxClockOffset || resp.ClockOffset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}
