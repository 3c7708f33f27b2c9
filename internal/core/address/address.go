// Package address validates Tezos-style base58check identities and
// entrypoint names. Only syntax is checked here; whether an identity is
// authorized for anything is the state machine's business.
package address

import (
	"crypto/sha256"
	"errors"
	"math/big"
	"strings"
)

var (
	ErrInvalid    = errors.New("invalid address")
	ErrEntrypoint = errors.New("invalid entrypoint")
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var alphabetIdx [128]int8

func init() {
	for i := range alphabetIdx {
		alphabetIdx[i] = -1
	}
	for i, c := range alphabet {
		alphabetIdx[c] = int8(i)
	}
}

// prefix bytes for the address kinds the oracle accepts.
var prefixes = map[string][]byte{
	"tz1": {6, 161, 159},
	"tz2": {6, 161, 161},
	"tz3": {6, 161, 164},
	"KT1": {2, 90, 121},
}

// Check reports whether s is a well-formed implicit (tz1/tz2/tz3) or
// originated (KT1) address: known prefix, valid base58, correct length and a
// matching double-sha256 checksum.
func Check(s string) error {
	if len(s) != 36 {
		return ErrInvalid
	}
	prefix, ok := prefixes[s[:3]]
	if !ok {
		return ErrInvalid
	}
	raw, err := decodeBase58(s)
	if err != nil {
		return ErrInvalid
	}
	// prefix(3) + payload(20) + checksum(4)
	if len(raw) != 27 {
		return ErrInvalid
	}
	for i, b := range prefix {
		if raw[i] != b {
			return ErrInvalid
		}
	}
	h := sha256.Sum256(raw[:23])
	h = sha256.Sum256(h[:])
	for i := 0; i < 4; i++ {
		if raw[23+i] != h[i] {
			return ErrInvalid
		}
	}
	return nil
}

// IsContract reports whether s is a well-formed originated (KT1) address.
func IsContract(s string) bool {
	return Check(s) == nil && strings.HasPrefix(s, "KT1")
}

// CheckEntrypoint validates an entrypoint name: 1 to 31 characters drawn from
// the Michelson annotation charset.
func CheckEntrypoint(s string) error {
	if len(s) == 0 || len(s) > 31 {
		return ErrEntrypoint
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '.':
		default:
			return ErrEntrypoint
		}
	}
	return nil
}

// Split separates an "address%entrypoint" target into its parts. A missing
// entrypoint defaults to "default".
func Split(target string) (addr, entrypoint string) {
	if i := strings.IndexByte(target, '%'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, "default"
}

func decodeBase58(s string) ([]byte, error) {
	n := new(big.Int)
	radix := big.NewInt(58)
	for _, c := range s {
		if c >= 128 || alphabetIdx[c] < 0 {
			return nil, ErrInvalid
		}
		n.Mul(n, radix)
		n.Add(n, big.NewInt(int64(alphabetIdx[c])))
	}
	raw := n.Bytes()
	// leading '1' characters encode leading zero bytes
	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}
	out := make([]byte, zeros+len(raw))
	copy(out[zeros:], raw)
	return out, nil
}
