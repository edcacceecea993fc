// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "github.com/vechain/rewards/metrics"

var (
	metricQueryOrderCounter = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricLimitBucket       = metrics.LazyLoadHistogramVec("logdb_query_limit_bucket", nil, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleFilter(filter *EventFilter) {
	if metrics.NoOp() {
		return
	}
	order := string(ASC)
	if filter.Order == DESC {
		order = string(DESC)
	}
	metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": order})

	if filter.Options != nil {
		limit := min(filter.Options.Limit, 1001)
		metricLimitBucket().ObserveWithLabels(int64(limit), nil)
	}
}
