package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeMin = 10_000
	codeMax = 999_999
)

var codeRange = big.NewInt(codeMax - codeMin + 1)

// GenerateCode returns a uniformly drawn number in [10000, 999999] padded
// with zeros to 6 characters, e.g. 12345 becomes "012345".
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate code, %w", err)
	}

	return formatCode(n.Int64() + codeMin), nil
}

func formatCode(n int64) string {
	return fmt.Sprintf("%06d", n)
}
