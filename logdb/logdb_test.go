// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/base"
)

func TestEvents(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	pool1, pool2 := base.Address{1}, base.Address{2}
	mining := base.Address{3}
	signer := base.Address{4}

	events := []*Event{
		{Op: "fill_vault", Pool: pool1, Signer: signer, Amount: 1000, Timestamp: 10},
		{Op: "deposit", Pool: pool1, Mining: &mining, Signer: signer, Amount: 100, Timestamp: 11},
		{Op: "deposit", Pool: pool2, Signer: signer, Amount: math.MaxUint64, Timestamp: 12},
		{Op: "claim", Pool: pool1, Mining: &mining, Signer: signer, Amount: 7, Timestamp: 13},
	}
	for i, ev := range events {
		seq, err := db.Insert(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
		ev.Seq = seq
	}

	all, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, events, all)

	tests := []struct {
		name   string
		filter *EventFilter
		want   []*Event
	}{
		{"by pool", &EventFilter{Pool: &pool1}, []*Event{events[0], events[1], events[3]}},
		{"by mining", &EventFilter{Mining: &mining}, []*Event{events[1], events[3]}},
		{"by op", &EventFilter{Op: "deposit"}, []*Event{events[1], events[2]}},
		{"desc", &EventFilter{Pool: &pool1, Order: DESC}, []*Event{events[3], events[1], events[0]}},
		{"paged", &EventFilter{Options: &Options{Offset: 1, Limit: 2}}, []*Event{events[1], events[2]}},
		{"after", &EventFilter{Pool: &pool1, After: 2}, []*Event{events[3]}},
		{"none", &EventFilter{Op: "slash"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FilterEvents(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())

	_, err = db.Insert(context.Background(), &Event{Op: "claim", Amount: 1})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "claim", got[0].Op)
	assert.Nil(t, got[0].Mining)
}
