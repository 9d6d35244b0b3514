// Package address canonicalises the wallet-style identity addresses used as
// account keys.
package address

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Treasury is the reserved balance account that funds task approvals and
// absorbs reward purchases. It is never a valid caller.
const Treasury = "treasury"

var (
	ErrInvalid  = errors.New("address must be 0x followed by 40 hex digits")
	ErrChecksum = errors.New("address checksum mismatch")
)

// Parse validates s and returns its EIP-55 checksummed form. All-lowercase
// and all-uppercase inputs are accepted as-is; mixed-case input must already
// carry the correct checksum.
func Parse(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != 42 || (s[:2] != "0x" && s[:2] != "0X") {
		return "", ErrInvalid
	}
	digits := s[2:]
	if _, err := hex.DecodeString(digits); err != nil {
		return "", ErrInvalid
	}

	sum := Checksum(digits)
	if isMixedCase(digits) && sum[2:] != digits {
		return "", ErrChecksum
	}
	return sum, nil
}

// Checksum returns "0x" plus the EIP-55 mixed-case encoding of the 40 hex
// digits. It does not validate its input.
func Checksum(digits string) string {
	lower := strings.ToLower(digits)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return "0x" + string(out)
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
