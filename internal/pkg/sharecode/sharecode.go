// Package sharecode generates human-shareable identifiers for experiences
// and cards. The alphabet drops characters that are easy to misread
// (O/0, I/1) since these codes are typed and read aloud.
package sharecode

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// New returns a random code of length n drawn from the share alphabet.
func New(n int) string {
	code := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// nothing sensible to do but panic.
			panic(err)
		}
		code[i] = alphabet[idx.Int64()]
	}
	return string(code)
}

// NewCardCode returns a card code in the canonical QE-XXXX-XXXX format.
func NewCardCode() string {
	raw := New(8)
	return "QE-" + raw[:4] + "-" + raw[4:]
}
