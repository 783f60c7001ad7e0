package utils

import (
	"fmt"
	"time"
)

// GenerateTransactionID builds the payment transaction reference for a
// booking: "TXN" + zero-padded booking id + unix timestamp.
func GenerateTransactionID(bookingID uint, at time.Time) string {
	return fmt.Sprintf("TXN%08d%d", bookingID, at.Unix())
}
