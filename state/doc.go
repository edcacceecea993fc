// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state persists pools, minings and token balances.
// It follows the flow as below:
//
//	[ operation ] -> [ stage ] -> ( commit ) -> [ kv batch ]
//	                    |
//	              [ raw record cache ]
//	                    |
//	                [ kv store ]
//
// A stage decodes each record at most once, hands out the same pointer for
// repeated loads, and writes back every changed record in a single batch.
// Dropping a stage without committing discards all of its changes.
package state
