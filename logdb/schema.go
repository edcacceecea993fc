// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for operation events
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	op TEXT NOT NULL,
	pool BLOB(32) NOT NULL,
	mining BLOB(32),
	signer BLOB(32) NOT NULL,
	amount INTEGER NOT NULL,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS eventPoolIndex ON event(pool);
CREATE INDEX IF NOT EXISTS eventMiningIndex ON event(mining);
`
