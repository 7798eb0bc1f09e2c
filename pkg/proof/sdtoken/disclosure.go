/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdtoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trustbloc/vc-engine/pkg/doc/credential"
	"github.com/trustbloc/vc-engine/pkg/proof"
)

const (
	// DisclosureSeparator joins the compact token and its disclosure
	// segments in the combined wire form.
	DisclosureSeparator = "~"

	sdKey    = "_sd"
	sdAlgKey = "_sd_alg"
	sdAlg    = "sha-256"

	disclosureParts = 3
	saltIndex       = 0
	nameIndex       = 1
	valueIndex      = 2

	saltSize = 128 / 8
)

// DisclosureClaim is one decoded disclosure segment: a salted claim
// name/value pair whose digest is committed in the token payload.
type DisclosureClaim struct {
	Disclosure string
	Salt       string
	Name       string
	Value      interface{}
}

// CombinedFormat joins the compact token and its disclosure segments into
// the single-string wire form.
func CombinedFormat(tok *credential.SelectiveDisclosureToken) string {
	if tok == nil {
		return ""
	}

	return strings.Join(append([]string{tok.Token}, tok.Disclosures...), DisclosureSeparator)
}

// ParseCombinedFormat splits a combined serialization back into the compact
// token and its disclosure segments. A trailing separator is tolerated.
func ParseCombinedFormat(serialized string) (*credential.SelectiveDisclosureToken, error) {
	if serialized == "" {
		return nil, fmt.Errorf("%w: combined form is empty", proof.ErrInvalidArgument)
	}

	parts := strings.Split(serialized, DisclosureSeparator)

	disclosures := make([]string, 0, len(parts)-1)

	for _, d := range parts[1:] {
		if d != "" {
			disclosures = append(disclosures, d)
		}
	}

	return &credential.SelectiveDisclosureToken{
		Token:       parts[0],
		Disclosures: disclosures,
	}, nil
}

func newDisclosure(name string, value interface{}) (string, error) {
	salt, err := generateSalt()
	if err != nil {
		return "", err
	}

	arr := []interface{}{salt, name, value}

	b, err := json.Marshal(arr)
	if err != nil {
		return "", fmt.Errorf("marshal disclosure: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func parseDisclosure(disclosure string) (*DisclosureClaim, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(disclosure)
	if err != nil {
		return nil, fmt.Errorf("failed to decode disclosure: %w", err)
	}

	var arr []interface{}

	if err := json.Unmarshal(decoded, &arr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal disclosure array: %w", err)
	}

	if len(arr) != disclosureParts {
		return nil, fmt.Errorf("disclosure array size[%d] must be %d", len(arr), disclosureParts)
	}

	salt, ok := arr[saltIndex].(string)
	if !ok {
		return nil, fmt.Errorf("disclosure salt type[%T] must be string", arr[saltIndex])
	}

	name, ok := arr[nameIndex].(string)
	if !ok {
		return nil, fmt.Errorf("disclosure name type[%T] must be string", arr[nameIndex])
	}

	return &DisclosureClaim{
		Disclosure: disclosure,
		Salt:       salt,
		Name:       name,
		Value:      arr[valueIndex],
	}, nil
}

// disclosureDigest commits a disclosure segment into the token payload.
func disclosureDigest(disclosure string) string {
	sum := sha256.Sum256([]byte(disclosure))

	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func generateSalt() (string, error) {
	salt := make([]byte, saltSize)

	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(salt), nil
}
