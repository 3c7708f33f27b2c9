// Package freshness holds the single temporal rule of the oracle.
package freshness

import (
	"time"

	"github.com/tzoracle/oracled/internal/core/state"
)

// Fresh reports whether rec may answer a price request at now. A record is
// fresh once its candle has closed: now at or past CloseTime. The boundary is
// inclusive, so a request arriving exactly at CloseTime is answered from
// cache.
func Fresh(rec *state.PriceRecord, now time.Time) bool {
	return now.Unix() >= rec.CloseTime
}
