package aptos

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"golang.org/x/crypto/sha3"
	"strings"
)

// Address is a 32-byte Aptos account address.
type Address [32]byte

// ed25519Scheme is the authentication key scheme byte for single ed25519 keys.
const ed25519Scheme = 0x00

// ParseAddress accepts long or short hex, with or without the 0x prefix.
// Short forms are left-padded, so "0x1" is the framework address.
func ParseAddress(s string) (Address, error) {
	var a Address
	h := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if h == "" || len(h) > 64 {
		return a, fmt.Errorf("invalid address %q: want 1 to 64 hex digits", s)
	}
	if len(h)%2 == 1 {
		h = "0" + h
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[32-len(raw):], raw)
	return a, nil
}

// String renders the long form: 0x followed by 64 hex digits.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// AccountAddress derives the address owned by an ed25519 key. For a key
// that was never rotated this is its authentication key.
func AccountAddress(pub ed25519.PublicKey) Address {
	return Address(sha3.Sum256(append(append([]byte(nil), pub...), ed25519Scheme)))
}

// ParsePrivateKey accepts a 32-byte ed25519 seed as 0x-hex, bare hex, or the
// AIP-80 form ed25519-priv-0x<hex>.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "ed25519-priv-")
	h = strings.TrimPrefix(h, "0x")
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("failed to construct private key: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("failed to construct private key: want %d bytes, got %d", ed25519.SeedSize, len(raw))
	}
	return ed25519.NewKeyFromSeed(raw), nil
}

// Account is the signing identity configured for the driver.
type Account struct {
	Key     ed25519.PrivateKey
	Address Address
}

func NewAccount(privateKey string) (Account, error) {
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return Account{}, err
	}
	return Account{Key: key, Address: AccountAddress(key.Public().(ed25519.PublicKey))}, nil
}

// PrivateKeyHex is the form the aptos CLI expects in a key file.
func (a Account) PrivateKeyHex() string {
	return "0x" + hex.EncodeToString(a.Key.Seed())
}
