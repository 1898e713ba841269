package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const OTPDigits = 6

// GenerateOTP returns a uniformly random numeric code of OTPDigits digits.
func GenerateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPDigits, n.Int64()), nil
}
