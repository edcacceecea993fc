// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package base

// SecondsPerDay is the granularity of every scheduled effect.
const SecondsPerDay uint64 = 86400

// StartOfDay aligns a unix timestamp down to the start of its day.
func StartOfDay(ts uint64) uint64 {
	return ts - ts%SecondsPerDay
}

// IsDayAligned reports whether ts is the start of a day.
func IsDayAligned(ts uint64) bool {
	return ts%SecondsPerDay == 0
}

// Days converts a number of days to seconds.
func Days(n uint64) uint64 {
	return n * SecondsPerDay
}
