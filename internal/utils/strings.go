package utils

import (
	"strconv"
	"strings"
)

// PadFloat formats a float32 with the given total integer width,
// preserving original decimals.
func PadFloat(num float32, width int) string {
	str := strconv.FormatFloat(float64(num), 'f', -1, 32)

	parts := strings.Split(str, ".")
	intPart := parts[0]

	if padding := width - len(intPart); padding > 0 {
		intPart = strings.Repeat("0", padding) + intPart
	}

	if len(parts) > 1 {
		return intPart + "." + parts[1]
	}
	return intPart
}
