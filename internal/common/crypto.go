package common

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	TokenSigningKeyInfo = "phishsoc/token-signing"
	RevocationKeyInfo   = "phishsoc/revocation"
)

// CalculateHash returns the hex encoded HMAC-SHA256 of inputs under key.
func CalculateHash(key []byte, inputs ...interface{}) string {
	if len(inputs) == 0 {
		return ""
	}
	h := hmac.New(sha256.New, key)
	for _, val := range inputs {
		switch v := val.(type) {
		case []byte:
			h.Write(v)
		case string:
			h.Write([]byte(v))
		default:
			h.Write([]byte(fmt.Sprintf("%v", v)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DeriveKey expands masterKey into a 32 byte subkey bound to info.
func DeriveKey(masterKey string, info string) ([]byte, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("master key is empty")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(masterKey), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// MustDeriveKey is like DeriveKey but panics on error.
func MustDeriveKey(masterKey string, info string) []byte {
	key, err := DeriveKey(masterKey, info)
	if err != nil {
		panic(err)
	}
	return key
}
