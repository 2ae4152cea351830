package circles

import "fmt"

// Cursor is the position of one event in the indexed stream
type Cursor struct {
	BlockNumber      int64 `json:"blockNumber"`
	TransactionIndex int64 `json:"transactionIndex"`
	LogIndex         int64 `json:"logIndex"`
}

// Compare orders cursors lexicographically by block, tx, log
// it returns -1 when c is older than o, 1 when newer and 0 when equal
func (c Cursor) Compare(o Cursor) int {
	switch {
	case c.BlockNumber != o.BlockNumber:
		return sign(c.BlockNumber - o.BlockNumber)
	case c.TransactionIndex != o.TransactionIndex:
		return sign(c.TransactionIndex - o.TransactionIndex)
	default:
		return sign(c.LogIndex - o.LogIndex)
	}
}

// Before reports whether c is strictly older than o
func (c Cursor) Before(o Cursor) bool { return c.Compare(o) < 0 }

func (c Cursor) String() string {
	return fmt.Sprintf("%d/%d/%d", c.BlockNumber, c.TransactionIndex, c.LogIndex)
}

func sign(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// PositionOf reads the cursor triple off a row
// ok is false when any position column is missing or not numeric
func PositionOf(r Row) (Cursor, bool) {
	b, ok1 := r.Int64(ColBlock)
	t, ok2 := r.Int64(ColTx)
	l, ok3 := r.Int64(ColLog)
	if !ok1 || !ok2 || !ok3 {
		return Cursor{}, false
	}
	return Cursor{BlockNumber: b, TransactionIndex: t, LogIndex: l}, true
}
