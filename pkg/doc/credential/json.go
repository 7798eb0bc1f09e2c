/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trustbloc/vc-engine/pkg/doc/util/jsonmap"
)

// rawCredential is the JSON wire form of a credential.
type rawCredential struct {
	Context  interface{}            `json:"@context,omitempty"`
	ID       string                 `json:"id,omitempty"`
	Type     interface{}            `json:"type,omitempty"`
	Subject  json.RawMessage        `json:"credentialSubject,omitempty"`
	Issuer   string                 `json:"issuer,omitempty"`
	Issued   string                 `json:"issuanceDate,omitempty"`
	Expired  string                 `json:"expirationDate,omitempty"`
	Status   *Status                `json:"credentialStatus,omitempty"`
	Schema   *TypedID               `json:"credentialSchema,omitempty"`
	Evidence []Evidence             `json:"evidence,omitempty"`
	Proof    map[string]interface{} `json:"proof,omitempty"`

	extra map[string]interface{}
}

// MarshalJSON serializes the credential into its JSON wire form, restoring
// any custom fields collected at parse time.
func (vc *Credential) MarshalJSON() ([]byte, error) {
	raw, err := vc.raw()
	if err != nil {
		return nil, err
	}

	return jsonmap.MarshalWithExtra(raw, raw.extra)
}

func (vc *Credential) raw() (*rawCredential, error) {
	raw := &rawCredential{
		ID:       vc.ID,
		Issuer:   vc.Issuer,
		Status:   vc.Status,
		Schema:   vc.Schema,
		Evidence: vc.Evidence,
		extra:    vc.CustomFields,
	}

	if len(vc.Context) > 0 {
		raw.Context = contextValue(vc.Context)
	}

	if len(vc.Types) > 0 {
		raw.Type = typesValue(vc.Types)
	}

	if vc.Issued != nil {
		raw.Issued = vc.Issued.UTC().Format(time.RFC3339)
	}

	switch {
	case vc.Expired != nil:
		raw.Expired = vc.Expired.UTC().Format(time.RFC3339)
	case vc.RawExpired != "":
		raw.Expired = vc.RawExpired
	}

	subjectBytes, err := marshalSubject(&vc.Subject)
	if err != nil {
		return nil, fmt.Errorf("marshal credential subject: %w", err)
	}

	raw.Subject = subjectBytes

	if vc.Proof != nil {
		proofMap, err := proofToMap(vc.Proof)
		if err != nil {
			return nil, err
		}

		raw.Proof = proofMap
	}

	return raw, nil
}

func (raw *rawCredential) toMap() (map[string]interface{}, error) {
	b, err := jsonmap.MarshalWithExtra(raw, raw.extra)
	if err != nil {
		return nil, err
	}

	return jsonmap.ToMap(b)
}

// ParseJSON parses the JSON wire form into a credential. Wire fields outside
// the model are preserved in CustomFields.
func ParseJSON(data []byte) (*Credential, error) {
	raw := &rawCredential{extra: make(map[string]interface{})}

	if err := jsonmap.UnmarshalWithExtra(data, raw, raw.extra); err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}

	return fromRaw(raw)
}

func fromRaw(raw *rawCredential) (*Credential, error) {
	vc := &Credential{
		ID:           raw.ID,
		Issuer:       raw.Issuer,
		Status:       raw.Status,
		Schema:       raw.Schema,
		Evidence:     raw.Evidence,
		CustomFields: raw.extra,
	}

	var err error

	vc.Context, err = decodeStringOrArray(raw.Context, "@context")
	if err != nil {
		return nil, err
	}

	vc.Types, err = decodeStringOrArray(raw.Type, "type")
	if err != nil {
		return nil, err
	}

	if raw.Issued != "" {
		issued, err := time.Parse(time.RFC3339, raw.Issued)
		if err != nil {
			return nil, fmt.Errorf("invalid issuance date: %w", err)
		}

		vc.Issued = &issued
	}

	if raw.Expired != "" {
		expired, err := time.Parse(time.RFC3339, raw.Expired)
		if err != nil {
			// Kept for the verifier to report: an unparseable expiration is a
			// warning there, not a parse failure here.
			vc.RawExpired = raw.Expired
		} else {
			vc.Expired = &expired
		}
	}

	if len(raw.Subject) > 0 {
		subject, err := unmarshalSubject(raw.Subject)
		if err != nil {
			return nil, fmt.Errorf("unmarshal credential subject: %w", err)
		}

		vc.Subject = *subject
	}

	if len(raw.Proof) > 0 {
		proof, err := proofFromMap(raw.Proof)
		if err != nil {
			return nil, err
		}

		vc.Proof = proof
	}

	return vc, nil
}

func marshalSubject(s *Subject) (json.RawMessage, error) {
	m := make(map[string]interface{}, len(s.Claims)+1)

	for k, v := range s.Claims {
		m[k] = v
	}

	if s.ID != "" {
		m["id"] = s.ID
	}

	return json.Marshal(m)
}

func unmarshalSubject(data json.RawMessage) (*Subject, error) {
	var m map[string]interface{}

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	subject := &Subject{Claims: make(map[string]interface{}, len(m))}

	for k, v := range m {
		if k == "id" {
			if id, ok := v.(string); ok {
				subject.ID = id
				continue
			}
		}

		subject.Claims[k] = v
	}

	return subject, nil
}

func proofToMap(p *Proof) (map[string]interface{}, error) {
	switch {
	case p.LinkedData != nil:
		return jsonmap.ToMap(p.LinkedData)
	case p.SDToken != nil:
		m, err := jsonmap.ToMap(p.SDToken)
		if err != nil {
			return nil, err
		}

		m["type"] = SelectiveDisclosureProofType

		return m, nil
	default:
		return nil, errors.New("proof has no variant set")
	}
}

func proofFromMap(m map[string]interface{}) (*Proof, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	if proofType, _ := m["type"].(string); proofType == SelectiveDisclosureProofType {
		var token SelectiveDisclosureToken

		if err := json.Unmarshal(b, &token); err != nil {
			return nil, fmt.Errorf("failed to parse selective disclosure proof: %w", err)
		}

		return &Proof{SDToken: &token}, nil
	}

	var ldProof LinkedDataProof

	if err := json.Unmarshal(b, &ldProof); err != nil {
		return nil, fmt.Errorf("failed to parse linked data proof: %w", err)
	}

	return &Proof{LinkedData: &ldProof}, nil
}

func contextValue(contexts []string) interface{} {
	if len(contexts) == 1 {
		return contexts[0]
	}

	arr := make([]interface{}, len(contexts))
	for i, c := range contexts {
		arr[i] = c
	}

	return arr
}

func typesValue(types []string) interface{} {
	if len(types) == 1 {
		return types[0]
	}

	arr := make([]interface{}, len(types))
	for i, t := range types {
		arr[i] = t
	}

	return arr
}

func decodeStringOrArray(v interface{}, what string) ([]string, error) {
	switch cv := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{cv}, nil
	case []interface{}:
		out := make([]string, 0, len(cv))

		for _, item := range cv {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s contains a non-string entry", what)
			}

			out = append(out, s)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%s is of unsupported format", what)
	}
}
