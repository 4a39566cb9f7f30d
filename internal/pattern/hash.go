package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Fingerprint returns the SHA256 hash (hex) of the rules in declaration
// order. Two catalogs with the same fingerprint classify every file the
// same way, whatever the layout of the files they were loaded from.
func (c *Catalog) Fingerprint() string {
	return sha256Hash(c.canonical())
}

// canonical renders the rules one per line with length-prefixed fields so
// that no choice of pattern bytes can make two rule lists collide.
func (c *Catalog) canonical() string {
	var builder strings.Builder
	for _, r := range c.declared {
		builder.WriteString(strconv.Itoa(r.Priority))
		builder.WriteByte(';')
		builder.WriteString(strconv.Itoa(len(r.Pattern)))
		builder.WriteByte(':')
		builder.Write(r.Pattern)
		builder.WriteByte(';')
		builder.WriteString(strconv.Itoa(len(r.Label)))
		builder.WriteByte(':')
		builder.WriteString(r.Label)
		builder.WriteByte('\n')
	}
	return builder.String()
}

// sha256Hash calculates the SHA256 hash of a string and returns it as a hex string.
func sha256Hash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
