/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package issuer implements the credential issuance pipeline: validate the
// request, build the unsigned credential, delegate signing to the proof
// engine selected by format id and attach the returned proof.
package issuer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vc-engine/internal/logfields"
	"github.com/trustbloc/vc-engine/pkg/api"
	"github.com/trustbloc/vc-engine/pkg/doc/credential"
	"github.com/trustbloc/vc-engine/pkg/proof"
)

// DefaultMaxClaims bounds the subject claim count of an issuance request.
const DefaultMaxClaims = 1000

var logger = log.New("vc-engine/issuer")

// Code classifies an issuance failure.
type Code string

// Issuance failure codes.
const (
	CodeUnsupportedFormat  Code = "UnsupportedFormat"
	CodeInvalidRequest     Code = "InvalidRequest"
	CodeSigningFailed      Code = "SigningFailed"
	CodeIssuerUnresolvable Code = "IssuerUnresolvable"
)

// Error is a classified issuance failure.
type Error struct {
	Code  Code
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

func failure(code Code, cause error) *Error {
	return &Error{Code: code, cause: cause}
}

// Issuer validates issuance requests and delegates signing to the registered
// proof engines.
type Issuer struct {
	registry  *proof.Registry
	maxClaims int
	now       func() time.Time
}

// Opt is an Issuer option.
type Opt func(i *Issuer)

// WithMaxClaims overrides the subject claim count limit.
func WithMaxClaims(limit int) Opt {
	return func(i *Issuer) {
		i.maxClaims = limit
	}
}

// New returns an issuer backed by the given engine registry.
func New(registry *proof.Registry, opts ...Opt) *Issuer {
	i := &Issuer{
		registry:  registry,
		maxClaims: DefaultMaxClaims,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Issue validates the request, first violation wins, then signs through the
// engine registered for the request format. Failures come back as *Error
// with a classification code; there are no side effects beyond the signer
// call.
func (i *Issuer) Issue(ctx context.Context, req *proof.IssuanceRequest) (*credential.Credential, error) {
	engine, err := i.registry.Resolve(req.Format)
	if err != nil {
		return nil, failure(CodeUnsupportedFormat, err)
	}

	if err := validateIssuerID(req.Issuer); err != nil {
		return nil, failure(CodeInvalidRequest, err)
	}

	issued := req.Issued
	if issued.IsZero() {
		issued = i.now()
	}

	issued = issued.UTC()

	if len(req.Subject.Claims) > i.maxClaims {
		return nil, failure(CodeInvalidRequest,
			fmt.Errorf("subject claims count %d exceeds maximum claims count %d", len(req.Subject.Claims), i.maxClaims))
	}

	if len(req.Types) == 0 {
		return nil, failure(CodeInvalidRequest, errors.New("credential type list is empty"))
	}

	unsigned := i.buildCredential(req, issued)

	p, err := engine.Issue(ctx, unsigned, req)
	if err != nil {
		return nil, classifyEngineFailure(err)
	}

	vc := unsigned.WithProof(p)

	logger.Debug("issued credential", logfields.WithCredentialID(vc.ID),
		logfields.WithIssuer(vc.Issuer), logfields.WithProofFormat(req.Format))

	return vc, nil
}

func (i *Issuer) buildCredential(req *proof.IssuanceRequest, issued time.Time) *credential.Credential {
	id := req.ID
	if id == "" {
		id = "urn:uuid:" + uuid.NewString()
	}

	types := req.Types
	if !containsString(types, credential.BaseType) {
		types = append([]string{credential.BaseType}, types...)
	}

	return &credential.Credential{
		Context:  []string{credential.BaseContext},
		ID:       id,
		Types:    types,
		Issuer:   req.Issuer,
		Issued:   &issued,
		Expired:  req.Expires,
		Subject:  req.Subject,
		Status:   req.Status,
		Schema:   req.Schema,
		Evidence: req.Evidence,
	}
}

// validateIssuerID accepts a DID with non-empty method and method-specific
// id, or an absolute IRI.
func validateIssuerID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("issuer is blank")
	}

	if strings.HasPrefix(id, "did:") {
		const didParts = 3

		parts := strings.SplitN(id, ":", didParts)
		if len(parts) != didParts || parts[1] == "" || parts[2] == "" {
			return fmt.Errorf("invalid issuer identifier %q", id)
		}

		return nil
	}

	u, err := url.Parse(id)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("invalid issuer identifier %q", id)
	}

	return nil
}

func classifyEngineFailure(err error) *Error {
	switch {
	case errors.Is(err, proof.ErrFormatMismatch):
		return failure(CodeUnsupportedFormat, err)
	case errors.Is(err, proof.ErrInvalidArgument):
		return failure(CodeInvalidRequest, err)
	case errors.Is(err, api.ErrNotFound):
		return failure(CodeIssuerUnresolvable, err)
	default:
		// ErrNoSigner and signer propagation both land here: the request was
		// sound, signing was not.
		return failure(CodeSigningFailed, err)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}
