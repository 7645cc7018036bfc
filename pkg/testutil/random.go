// Package testutil provides utilities for testing
package testutil

import (
	"fmt"
	"math/rand"
	"time"
)

// RandomString generates a random string of given length
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// RandomTemplateID generates a unique template id for testing
func RandomTemplateID() string {
	return fmt.Sprintf("test-tmpl-%s", RandomString(8))
}

// RandomLabelValue generates a unique container label value for testing
func RandomLabelValue() string {
	return fmt.Sprintf("smoke-%s-%d", RandomString(6), time.Now().UnixNano())
}
