package domain

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Chars[rand.Intn(len(base36Chars))]
	}
	return string(b)
}

// NewOrderID generates a receipt-style order id: "DH" followed by the
// current millisecond timestamp in base 36 and a 5 character random
// suffix, uppercased. Unique for the lifetime of the process; the cloud
// backend assigns its own opaque ids instead.
func NewOrderID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return strings.ToUpper("DH" + ts + randomSuffix(5))
}

// NewRecordID generates an id for records created in the in-memory
// store: base 36 millisecond timestamp plus a random suffix.
func NewRecordID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return ts + randomSuffix(5)
}
