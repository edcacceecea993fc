// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import "github.com/vechain/rewards/metrics"

var (
	metricOperationCount    = metrics.LazyLoadCounterVec("operations_count", []string{"op", "result"})
	metricOperationDuration = metrics.LazyLoadHistogramVec("operation_duration_ms", []string{"op"}, metrics.BucketHTTPReqs)
	metricDistributedTokens = metrics.LazyLoadCounter("distributed_tokens")
)
