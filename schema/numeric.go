package schema

import "strconv"

// itoa and atoi centralize the int<->string conversions used by every
// counter cell. atoi treats a malformed cell as zero rather than
// failing the whole row decode.
func itoa(n int) string { return strconv.Itoa(n) }

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
