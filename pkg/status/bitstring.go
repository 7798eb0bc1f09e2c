/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package status implements the revocation index: a gzip-compressed
// bitstring where every credential owns one bit, plus an in-memory status
// list collaborator for tests and single-process deployments.
package status

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
)

const bitsPerByte = 8

// BitString is a fixed-length bit set with one position per credential.
type BitString struct {
	bits []byte
}

// NewBitString returns a zeroed bit string able to hold length bits.
func NewBitString(length int) *BitString {
	size := 1 + ((length - 1) / bitsPerByte)

	return &BitString{bits: make([]byte, size)}
}

// Set sets or clears the bit at position.
func (b *BitString) Set(position int, bitSet bool) error {
	nByte := position / bitsPerByte
	nBit := position % bitsPerByte

	if position < 0 || nByte > len(b.bits)-1 {
		return fmt.Errorf("position %d is invalid", position)
	}

	mask := byte(1 << nBit)

	if bitSet {
		b.bits[nByte] |= mask
	} else {
		b.bits[nByte] &^= mask
	}

	return nil
}

// Get returns the bit at position.
func (b *BitString) Get(position int) (bool, error) {
	nByte := position / bitsPerByte
	nBit := position % bitsPerByte

	if position < 0 || nByte > len(b.bits)-1 {
		return false, fmt.Errorf("position %d is invalid", position)
	}

	return b.bits[nByte]&(1<<nBit) != 0, nil
}

// Encode returns the gzip-compressed base64url form of the bit string, the
// form carried in a status list credential's encodedList field.
func (b *BitString) Encode() (string, error) {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)

	if _, err := w.Write(b.bits); err != nil {
		return "", err
	}

	if err := w.Close(); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeBitString decodes the gzip-compressed base64url form.
func DecodeBitString(encoded string) (*BitString, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode encoded list: %w", err)
	}

	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress encoded list: %w", err)
	}

	var buf bytes.Buffer

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read encoded list: %w", err)
	}

	return &BitString{bits: buf.Bytes()}, nil
}
