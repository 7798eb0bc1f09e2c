/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anchor extracts and validates blockchain anchoring evidence
// carried on a credential. Chain lookup itself is an external collaborator.
package anchor

import (
	"errors"

	"github.com/trustbloc/vc-engine/pkg/api"
	"github.com/trustbloc/vc-engine/pkg/doc/credential"
)

// EvidenceType marks an evidence entry as a blockchain anchor record.
const EvidenceType = "BlockchainAnchor"

// ExtractEvidence scans the credential's evidence list for an anchoring
// record. Returns nil when the credential carries none.
func ExtractEvidence(vc *credential.Credential) *api.AnchorEvidence {
	for _, ev := range vc.Evidence {
		evType, _ := ev["type"].(string)
		if evType != EvidenceType {
			continue
		}

		chainID, _ := ev["chainId"].(string)
		txRef, _ := ev["transactionReference"].(string)
		anchorHash, _ := ev["anchorHash"].(string)

		return &api.AnchorEvidence{
			Type:       evType,
			ChainID:    chainID,
			TxRef:      txRef,
			AnchorHash: anchorHash,
		}
	}

	return nil
}

// ValidateStructure checks that the anchoring record names the chain and the
// transaction it claims to be anchored in.
func ValidateStructure(ev *api.AnchorEvidence) error {
	if ev == nil {
		return errors.New("anchor evidence is nil")
	}

	if ev.ChainID == "" {
		return errors.New("anchor evidence is missing chain id")
	}

	if ev.TxRef == "" {
		return errors.New("anchor evidence is missing transaction reference")
	}

	return nil
}

// NewEvidence builds the evidence entry embedded in a credential for an
// anchoring record.
func NewEvidence(chainID, txRef, anchorHash string) credential.Evidence {
	return credential.Evidence{
		"type":                 EvidenceType,
		"chainId":              chainID,
		"transactionReference": txRef,
		"anchorHash":           anchorHash,
	}
}
