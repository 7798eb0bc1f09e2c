/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package canonical produces the deterministic byte form of a JSON document.
// Semantically equal documents canonicalize to identical bytes regardless of
// the map insertion order they were built with, which makes proofs and
// content-addressed anchoring possible.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/multiformats/go-multibase"
	"golang.org/x/exp/maps"
)

// DefaultMaxSize bounds the canonical output to guard against documents
// crafted to exhaust memory.
const DefaultMaxSize = 1 << 20 // 1 MiB

// ErrSizeExceeded is returned when the canonical form exceeds the configured
// byte limit.
var ErrSizeExceeded = errors.New("canonical form size exceeded")

// Canonicalizer converts documents to canonical bytes.
type Canonicalizer struct {
	maxSize int
}

// Opt is a Canonicalizer option.
type Opt func(c *Canonicalizer)

// WithMaxSize overrides the canonical output byte limit.
func WithMaxSize(limit int) Opt {
	return func(c *Canonicalizer) {
		c.maxSize = limit
	}
}

// New returns a Canonicalizer with the default size limit unless overridden.
func New(opts ...Opt) *Canonicalizer {
	c := &Canonicalizer{maxSize: DefaultMaxSize}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Canonicalize returns the canonical byte form of doc: object keys ordered
// lexicographically at every level, numbers normalized, explicit nulls kept.
// An empty or nil document canonicalizes to "{}".
func (c *Canonicalizer) Canonicalize(doc map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer

	if err := writeValue(&buf, doc); err != nil {
		return nil, err
	}

	if buf.Len() > c.maxSize {
		return nil, fmt.Errorf("%w: %d bytes over limit of %d", ErrSizeExceeded, buf.Len(), c.maxSize)
	}

	return buf.Bytes(), nil
}

// Digest returns the content-address fingerprint of doc:
// multibase(sha256(canonical bytes)) using base58btc.
func (c *Canonicalizer) Digest(doc map[string]interface{}) (string, error) {
	canonicalBytes, err := c.Canonicalize(doc)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonicalBytes)

	return multibase.Encode(multibase.Base58BTC, sum[:])
}

//nolint:gochecknoglobals
var defaultCanonicalizer = New()

// Canonicalize canonicalizes doc with the default size limit.
func Canonicalize(doc map[string]interface{}) ([]byte, error) {
	return defaultCanonicalizer.Canonicalize(doc)
}

// Digest fingerprints doc with the default size limit.
func Digest(doc map[string]interface{}) (string, error) {
	return defaultCanonicalizer.Digest(doc)
}

func writeValue(buf *bytes.Buffer, v interface{}) error {
	switch cv := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case map[string]interface{}:
		return writeObject(buf, cv)
	case []interface{}:
		return writeArray(buf, cv)
	case bool:
		buf.WriteString(strconv.FormatBool(cv))
		return nil
	case string:
		return writeString(buf, cv)
	case json.Number:
		f, err := cv.Float64()
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", cv.String(), err)
		}

		writeNumber(buf, f)

		return nil
	case float64:
		writeNumber(buf, cv)
		return nil
	case float32:
		writeNumber(buf, float64(cv))
		return nil
	case int:
		buf.WriteString(strconv.FormatInt(int64(cv), 10))
		return nil
	case int32:
		buf.WriteString(strconv.FormatInt(int64(cv), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(cv, 10))
		return nil
	case uint64:
		buf.WriteString(strconv.FormatUint(cv, 10))
		return nil
	default:
		// Anything else goes through a JSON round trip so custom claim types
		// normalize the same way their wire form would.
		b, err := json.Marshal(cv)
		if err != nil {
			return fmt.Errorf("unsupported document value %T: %w", v, err)
		}

		var normalized interface{}
		if err := json.Unmarshal(b, &normalized); err != nil {
			return err
		}

		return writeValue(buf, normalized)
	}
}

func writeObject(buf *bytes.Buffer, m map[string]interface{}) error {
	buf.WriteByte('{')

	keys := maps.Keys(m)
	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeString(buf, k); err != nil {
			return err
		}

		buf.WriteByte(':')

		if err := writeValue(buf, m[k]); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

func writeArray(buf *bytes.Buffer, arr []interface{}) error {
	buf.WriteByte('[')

	for i, v := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeValue(buf, v); err != nil {
			return err
		}
	}

	buf.WriteByte(']')

	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	buf.Write(b)

	return nil
}

// writeNumber renders integral values without fraction or exponent so that
// 42, 42.0 and 4.2e1 canonicalize identically.
func writeNumber(buf *bytes.Buffer, f float64) {
	const maxExact = 1 << 53

	if f == float64(int64(f)) && f < maxExact && f > -maxExact {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return
	}

	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}
