package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// Pairing codes avoid characters that are easy to misread: 0/O, 1/I/L.
const (
	pairingAlphabet   = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	pairingCodeLength = 8
)

func randomToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func randomPairingCode() (string, error) {
	max := big.NewInt(int64(len(pairingAlphabet)))
	buf := make([]byte, pairingCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate pairing code: %w", err)
		}
		buf[i] = pairingAlphabet[n.Int64()]
	}
	return string(buf), nil
}
