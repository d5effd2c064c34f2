package cache

import (
	"fmt"
	"strings"
	"time"
)

// Key builders shared by the HTTP handlers and the scheduled warms, so a warm
// replaces exactly the entry a request would read.

func TRMKey(start, end time.Time) string {
	return fmt.Sprintf("trm:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func RatesKey(base string) string {
	return "rates:" + strings.ToUpper(base)
}

func HistoryKey(base string, days int, currencies []string) string {
	return fmt.Sprintf("history:%s:%d:%s", strings.ToUpper(base), days, strings.Join(currencies, ","))
}
