package verification

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "010000", formatCode(codeMin))
	assert.Equal(t, "012345", formatCode(12345))
	assert.Equal(t, "999999", formatCode(codeMax))
}

func TestGenerateCode(t *testing.T) {
	for range 2000 {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err, "code %q is not numeric", code)
		require.GreaterOrEqual(t, n, codeMin)
		require.LessOrEqual(t, n, codeMax)
	}
}
