package rand

import (
	"math/rand/v2"
	"strings"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLen      = 22
)

// InsecureID generates a random identifier suitable for correlating log
// lines, not for anything security-sensitive.
func InsecureID() string {
	var b strings.Builder
	for range idLen {
		_ = b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return b.String()
}
