// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer struct{ s string }

func (s *stringer) String() string { return s.s }

func TestTerminalHandler(t *testing.T) {
	var (
		out   bytes.Buffer
		level slog.LevelVar
	)
	level.Set(LevelInfo)
	l := NewLogger(NewTerminalHandlerWithLevel(&out, &level, false))

	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.With("pkg", "program").Info("deposited", "amount", 100, "who", &stringer{"alice"}, "err", errors.New("a b"))
	line := out.String()
	assert.True(t, strings.HasPrefix(line, "INFO  ["), line)
	assert.Contains(t, line, "deposited")
	assert.Contains(t, line, "pkg=program")
	assert.Contains(t, line, "amount=100")
	assert.Contains(t, line, "who=alice")
	assert.Contains(t, line, `err="a b"`)
	assert.True(t, strings.HasSuffix(line, "\n"))

	out.Reset()
	level.Set(LevelTrace)
	l.Trace("now visible")
	assert.Contains(t, out.String(), "TRACE")
}

func TestJSONHandler(t *testing.T) {
	var (
		out   bytes.Buffer
		level slog.LevelVar
	)
	l := NewLogger(JSONHandlerWithLevel(&out, &level))
	l.Warn("restricted", "nil", (*stringer)(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "warn", rec["lvl"])
	assert.Equal(t, "restricted", rec["msg"])
	assert.Equal(t, "<nil>", rec["nil"])
	assert.Contains(t, rec, "t")
}

func TestLogfmtHandler(t *testing.T) {
	var (
		out   bytes.Buffer
		level slog.LevelVar
	)
	l := NewLogger(LogfmtHandlerWithLevel(&out, &level))
	l.Error("failed", "odd")
	assert.Contains(t, out.String(), "lvl=error")
	assert.Contains(t, out.String(), errorKey)
}

func TestRootAndWithContext(t *testing.T) {
	pkgLogger := WithContext("pkg", "test")

	var out bytes.Buffer
	prev := Root()
	defer SetDefault(prev)
	SetDefault(NewLogger(NewTerminalHandler(&out, false)))

	pkgLogger.With("k", "v").Info("hello")
	Info("from root")
	assert.Contains(t, out.String(), "pkg=test")
	assert.Contains(t, out.String(), "k=v")
	assert.Contains(t, out.String(), "from root")
	assert.True(t, pkgLogger.Enabled(context.Background(), LevelTrace))
}

func TestLevels(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
	assert.Equal(t, "debug", LevelString(LevelDebug))
	assert.Equal(t, "unknown", LevelString(slog.Level(3)))
}
