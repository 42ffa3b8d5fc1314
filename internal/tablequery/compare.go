package tablequery

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
)

// compareValues orders two non-nil field values. Strings use Spanish
// collation, case- and accent-insensitive; numbers compare numerically;
// times by instant; mismatched or unknown types fall back to collated
// comparison of their textual form.
func compareValues(coll *collate.Collator, a, b interface{}) int {
	if da, ok := a.(decimal.Decimal); ok {
		if db, ok := b.(decimal.Decimal); ok {
			return da.Cmp(db)
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return coll.CompareString(sa, sb)
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return coll.CompareString(stringify(a), stringify(b))
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	default:
		return 0, false
	}
}
