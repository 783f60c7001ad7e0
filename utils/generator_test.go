package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTransactionID(t *testing.T) {
	at := time.Unix(1767225600, 0)
	assert.Equal(t, "TXN000000421767225600", GenerateTransactionID(42, at))
	assert.Equal(t, "TXN123456781767225600", GenerateTransactionID(12345678, at))
}
