// Package ordernum produces human-readable order numbers of the form
// MC-YYYYMMDD-NNNN. Numbers are not guaranteed to be unique; the order id is.
package ordernum

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const prefix = "MC"

// Generate returns a number for an order placed at now.
func Generate(now time.Time) string {
	return format(now, 1000+rand.IntN(9000))
}

func format(now time.Time, suffix int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102"), suffix)
}

// Validate reports whether number has the MC-YYYYMMDD-NNNN shape.
func Validate(number string) bool {
	if len(number) != len("MC-20060102-0000") || number[:3] != prefix+"-" || number[11] != '-' {
		return false
	}
	if _, err := time.Parse("20060102", number[3:11]); err != nil {
		return false
	}
	for i := 12; i < len(number); i++ {
		ch := number[i]
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
