// Package digest provides the content fingerprinting used to build
// stable node identifiers across the library.
package digest

import (
	"crypto/sha1"
	"encoding/hex"
)

// SHA1Hex returns the lowercase hex SHA-1 digest of b. The digest is a
// pure function of b; the empty slice has a well-defined digest.
func SHA1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
