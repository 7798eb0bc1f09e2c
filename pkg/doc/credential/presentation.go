/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

// PresentationType is the marker type of a presentation.
const PresentationType = "VerifiablePresentation"

// Presentation bundles one or more credentials for a relying party. With a
// selective-disclosure capable proof format only the requested claims are
// disclosed.
type Presentation struct {
	Context     []string
	Types       []string
	Holder      string
	Credentials []*Credential
	Proof       *Proof
}

// PresentationRequest describes what a relying party asked to see.
type PresentationRequest struct {
	// Holder is the identifier presenting the credentials.
	Holder string

	// DisclosedClaims restricts which claim names are revealed when the
	// format supports selective disclosure. Empty means reveal everything.
	DisclosedClaims []string
}
