// Package base64xml maps 6-bit values to characters that are safe in XML
// name tokens and URL fragments. Every character carries exactly one value;
// there is no regrouping of bits across characters.
package base64xml

import (
	"errors"
	"fmt"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.-"

// MaxValue is the largest value a single character can carry.
const MaxValue = len(alphabet) - 1

var (
	ErrInvalidValue     = errors.New("base64xml: value out of range")
	ErrInvalidCharacter = errors.New("base64xml: invalid character")
)

var encodingTable = func() [len(alphabet)]byte {
	var t [len(alphabet)]byte
	copy(t[:], alphabet)
	return t
}()

var decodingTable = func() map[rune]int {
	m := make(map[rune]int, len(alphabet))
	for i, r := range alphabet {
		m[r] = i
	}
	return m
}()

// Alphabet returns the 64 characters in value order.
func Alphabet() string {
	return alphabet
}

// EncodingTable returns a copy of the value to character table.
func EncodingTable() [len(alphabet)]byte {
	return encodingTable
}

// DecodingTable returns a copy of the character to value table.
func DecodingTable() map[rune]int {
	m := make(map[rune]int, len(decodingTable))
	for r, v := range decodingTable {
		m[r] = v
	}
	return m
}

// Encode returns one character per value. Nothing is returned unless every
// value lies in [0, MaxValue].
func Encode(values []int) (string, error) {
	b := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > MaxValue {
			return "", fmt.Errorf("%w: %d at position %d", ErrInvalidValue, v, i)
		}
		b[i] = encodingTable[v]
	}
	return string(b), nil
}

// Decode is the inverse of Encode.
func Decode(text string) ([]int, error) {
	values := make([]int, 0, len(text))
	for i, r := range text {
		v, ok := decodingTable[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, r, i)
		}
		values = append(values, v)
	}
	return values, nil
}
