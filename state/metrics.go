// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/vechain/rewards/metrics"

var (
	metricRecordGrowth = metrics.LazyLoadCounterVec("record_growth_count", []string{"collection"})
	metricRecordWrites = metrics.LazyLoadCounterVec("record_write_count", []string{"kind"})
)
