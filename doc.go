/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vcengine issues and verifies verifiable credentials through
// pluggable proof formats.
//
// Packages for end developer usage
//
// pkg/issuer: The issuance pipeline. Validates an issuance request, builds
// the unsigned credential and delegates signing to the proof engine selected
// by format id.
// Reference: https://pkg.go.dev/github.com/trustbloc/vc-engine/pkg/issuer
//
// pkg/verifier: The multi-check verification state machine. Runs the enabled
// checks concurrently and reports every outcome, plus bounded batch
// verification.
// Reference: https://pkg.go.dev/github.com/trustbloc/vc-engine/pkg/verifier
//
// pkg/proof: The proof format abstraction and registry, with the linked-data
// signature engine under pkg/proof/ldproof and the selective-disclosure token
// engine under pkg/proof/sdtoken.
// Reference: https://pkg.go.dev/github.com/trustbloc/vc-engine/pkg/proof
//
// Basic workflow
//
//	1) Implement the collaborator interfaces in pkg/api (signer, resolver,
//	   status list, anchor verifier) for your deployment.
//	2) Register proof engines in a proof.Registry.
//	3) Create an issuer.Issuer and a verifier.Verifier over the registry.
//	4) Issue credentials, present them, verify them.
package vcengine
