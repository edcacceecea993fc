// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb keeps the history of successful operations in sqlite.
package logdb

import (
	"context"
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Insert appends an event and returns its sequence number.
func (db *LogDB) Insert(ctx context.Context, ev *Event) (int64, error) {
	var mining any // NULL for pool level events
	if ev.Mining != nil {
		mining = ev.Mining.Bytes()
	}
	res, err := db.db.ExecContext(ctx,
		"INSERT INTO event(op, pool, mining, signer, amount, timestamp) VALUES(?, ?, ?, ?, ?, ?)",
		ev.Op, ev.Pool.Bytes(), mining, ev.Signer.Bytes(), int64(ev.Amount), int64(ev.Timestamp))
	if err != nil {
		return 0, errors.Wrap(err, "insert event")
	}
	return res.LastInsertId()
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT seq, op, pool, mining, signer, amount, timestamp FROM event WHERE 1"
	if filter.Pool != nil {
		args = append(args, filter.Pool.Bytes())
		stmt += " AND pool = ?"
	}
	if filter.Mining != nil {
		args = append(args, filter.Mining.Bytes())
		stmt += " AND mining = ?"
	}
	if filter.Op != "" {
		args = append(args, filter.Op)
		stmt += " AND op = ?"
	}
	if filter.After > 0 {
		args = append(args, filter.After)
		stmt += " AND seq > ?"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, int64(filter.Options.Offset), int64(filter.Options.Limit))
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev                   Event
			pool, mining, signer []byte
			amount, timestamp    int64
		)
		if err := rows.Scan(&ev.Seq, &ev.Op, &pool, &mining, &signer, &amount, &timestamp); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		ev.Pool = base.BytesToAddress(pool)
		ev.Signer = base.BytesToAddress(signer)
		if mining != nil {
			m := base.BytesToAddress(mining)
			ev.Mining = &m
		}
		ev.Amount = uint64(amount)
		ev.Timestamp = uint64(timestamp)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate events")
	}
	return events, nil
}
