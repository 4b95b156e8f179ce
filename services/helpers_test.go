package services

import (
	"math"
	"time"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func floatClose(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
