package ledger

import (
	"strings"
	"time"
)

// txnIDLayout renders UTC time down to the microsecond, e.g.
// 20240102T030405123456Z.
const txnIDLayout = "20060102T150405.000000Z"

// FormatTxnID renders t as a transaction id.
func FormatTxnID(t time.Time) string {
	return strings.Replace(t.UTC().Format(txnIDLayout), ".", "", 1)
}

// ParseTxnID is the inverse of FormatTxnID.
func ParseTxnID(id string) (time.Time, error) {
	if len(id) > 15 {
		id = id[:15] + "." + id[15:]
	}
	return time.Parse(txnIDLayout, id)
}

// NewTxnID allocates an id for a transaction started at now. Ids are
// strictly increasing within a ledger: when now does not sort after the
// newest id already recorded, the id is moved one microsecond past it.
func NewTxnID(now time.Time, l *Ledger) string {
	now = now.UTC().Truncate(time.Microsecond)
	if l == nil {
		return FormatTxnID(now)
	}

	for _, txn := range l.Transactions() {
		last, err := ParseTxnID(txn.TxnID)
		if err != nil {
			continue
		}
		if !now.After(last) {
			now = last.Add(time.Microsecond)
		}
	}
	return FormatTxnID(now)
}
