package util

import (
	"fmt"
	"time"
)

// MinutesString formats d as fractional minutes, e.g. "12.50".
func MinutesString(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Minutes())
}
