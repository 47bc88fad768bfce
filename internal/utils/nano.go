package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

var (
	TokenSize     = 32
	tokenAlphabet = "0123456789abcdef"
)

// VerificationToken returns a hex token drawn from crypto/rand.
func VerificationToken() string {
	return VerificationTokenSize(TokenSize)
}

func VerificationTokenSize(size int) string {
	if size == 0 {
		size = TokenSize
	}

	return gonanoid.MustGenerate(tokenAlphabet, size)
}
