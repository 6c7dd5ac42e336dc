package internal

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var base36Len = big.NewInt(int64(len(base36)))

// ShortRandom returns n random base-36 characters. It is used as a
// collision-breaking suffix on generated identifiers, not as a secret.
func ShortRandom(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, n)
	for i := range out {
		v, err := rand.Int(rand.Reader, base36Len)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		out[i] = base36[v.Int64()]
	}
	return string(out)
}

// NewUserID returns user_<uuid>_<suffix>.
func NewUserID() string {
	return "user_" + uuid.NewString() + "_" + ShortRandom(7)
}
