package utils

import (
	"fmt"
	"log"
	"math"
	"time"
)

// ToPointer returns a pointer to the given value.
func ToPointer[T any](value T) *T {
	return &value
}

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v", r)
			}
		}()
		fn()
	}()
}

// Round2 rounds to 2 decimal places, the presentation precision used for
// dollar amounts and percentages throughout the engine.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place (win rates, hold days).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round3 rounds to 3 decimal places (sigma, Sharpe).
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round4 rounds to 4 decimal places (p-values).
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// FormatMoney renders a signed dollar amount, e.g. "+$12.50" / "-$3.00".
func FormatMoney(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+$%.2f", v)
	}
	return fmt.Sprintf("-$%.2f", -v)
}

// FormatPct renders a signed percentage, e.g. "+1.25%".
func FormatPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// TodayStamp returns the current UTC date as YYYY-MM-DD, used to key
// deliverable artifacts.
func TodayStamp() string {
	return time.Now().UTC().Format("2006-01-02")
}
