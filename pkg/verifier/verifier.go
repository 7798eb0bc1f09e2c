/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verifier implements the multi-check verification state machine.
// Every enabled check runs and is reported, even after an earlier check
// fails; a slow or failing collaborator for one check never blocks or
// corrupts another check's result.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
	"golang.org/x/sync/errgroup"

	"github.com/trustbloc/vc-engine/internal/logfields"
	"github.com/trustbloc/vc-engine/pkg/anchor"
	"github.com/trustbloc/vc-engine/pkg/api"
	"github.com/trustbloc/vc-engine/pkg/doc/credential"
	"github.com/trustbloc/vc-engine/pkg/proof"
	"github.com/trustbloc/vc-engine/pkg/proof/ldproof"
	"github.com/trustbloc/vc-engine/pkg/proof/sdtoken"
	"github.com/trustbloc/vc-engine/pkg/schema"
)

// DefaultBatchConcurrency bounds the worker pool used by VerifyBatch.
const DefaultBatchConcurrency = 8

var logger = log.New("vc-engine/verifier")

// Options toggles the independent verification checks.
type Options struct {
	CheckExpiration        bool
	CheckRevocation        bool
	ValidateSchema         bool
	VerifyBlockchainAnchor bool

	// StrictCollaborators turns the degrade-not-fail conditions (revocation
	// requested without a status list, missing schema definition,
	// unparseable expiration) into hard failures.
	StrictCollaborators bool
}

// DefaultOptions returns the default check toggles: expiration and
// revocation on, schema and anchor off.
func DefaultOptions() *Options {
	return &Options{
		CheckExpiration: true,
		CheckRevocation: true,
	}
}

// Verifier runs the verification checks against a credential.
type Verifier struct {
	engines        *proof.Registry
	resolver       api.Resolver
	statusList     api.StatusList
	anchorVerifier api.AnchorVerifier
	schemas        *schema.Registry
	schemaStore    schema.Store

	batchConcurrency int
	now              func() time.Time
}

// Opt is a Verifier option.
type Opt func(v *Verifier)

// WithResolver wires the identifier resolver used for the issuer check.
func WithResolver(r api.Resolver) Opt {
	return func(v *Verifier) {
		v.resolver = r
	}
}

// WithStatusList wires the revocation collaborator.
func WithStatusList(s api.StatusList) Opt {
	return func(v *Verifier) {
		v.statusList = s
	}
}

// WithAnchorVerifier wires the blockchain anchor collaborator.
func WithAnchorVerifier(a api.AnchorVerifier) Opt {
	return func(v *Verifier) {
		v.anchorVerifier = a
	}
}

// WithSchemaRegistry wires the schema validator registry.
func WithSchemaRegistry(r *schema.Registry) Opt {
	return func(v *Verifier) {
		v.schemas = r
	}
}

// WithSchemaStore wires the schema definition store.
func WithSchemaStore(s schema.Store) Opt {
	return func(v *Verifier) {
		v.schemaStore = s
	}
}

// WithBatchConcurrency overrides the VerifyBatch worker pool size.
func WithBatchConcurrency(n int) Opt {
	return func(v *Verifier) {
		v.batchConcurrency = n
	}
}

// New returns a verifier dispatching proof checks to the given engine
// registry.
func New(engines *proof.Registry, opts ...Opt) *Verifier {
	v := &Verifier{
		engines:          engines,
		batchConcurrency: DefaultBatchConcurrency,
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify runs every enabled check concurrently and aggregates the result.
// Expected failure modes land in the result; the returned error is reserved
// for genuine misconfiguration (no engine registry wired).
func (v *Verifier) Verify(ctx context.Context, vc *credential.Credential, opts *Options) (*Result, error) {
	if v.engines == nil || len(v.engines.Formats()) == 0 {
		return nil, errors.New("verifier has no proof engines configured")
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	var (
		proofRes    *proof.VerifyResult
		proofErrs   []CheckError
		issuerValid bool
		issuerErrs  []CheckError
		expiration  checkOutcome
		revocation  checkOutcome
		schemaCheck checkOutcome
		anchorCheck checkOutcome
	)

	// The six checks are mutually independent: each goroutine owns its own
	// result slot, so there is no shared mutable state to guard.
	g := &errgroup.Group{}

	g.Go(func() error {
		proofRes, proofErrs = v.checkProof(ctx, vc)
		return nil
	})

	g.Go(func() error {
		issuerValid, issuerErrs = v.checkIssuer(ctx, vc)
		return nil
	})

	g.Go(func() error {
		expiration = v.checkExpiration(vc, opts)
		return nil
	})

	g.Go(func() error {
		revocation = v.checkRevocation(ctx, vc, opts)
		return nil
	})

	g.Go(func() error {
		schemaCheck = v.checkSchema(ctx, vc, opts)
		return nil
	})

	g.Go(func() error {
		anchorCheck = v.checkAnchor(ctx, vc, opts)
		return nil
	})

	_ = g.Wait() // check goroutines never return errors

	res := &Result{
		ProofValid:            proofRes.ProofValid,
		IssuerValid:           issuerValid && proofRes.IssuerValid,
		NotExpired:            expiration.ok,
		NotRevoked:            revocation.ok,
		SchemaValid:           schemaCheck.ok,
		BlockchainAnchorValid: anchorCheck.ok,
	}

	// Assemble in fixed check order so error and warning lists are
	// deterministic regardless of goroutine scheduling.
	res.Errors = append(res.Errors, proofErrs...)
	res.Errors = append(res.Errors, issuerErrs...)

	for _, c := range []struct {
		name    string
		outcome checkOutcome
	}{
		{"expiration", expiration},
		{"revocation", revocation},
		{"schema", schemaCheck},
		{"anchor", anchorCheck},
	} {
		res.Errors = append(res.Errors, c.outcome.errs...)
		res.Warnings = append(res.Warnings, c.outcome.warnings...)

		for _, warning := range c.outcome.warnings {
			logger.Debug(warning, logfields.WithCheck(c.name),
				logfields.WithCredentialID(vc.ID))
		}
	}

	res.Valid = res.ProofValid && res.IssuerValid && res.NotExpired &&
		res.NotRevoked && res.SchemaValid && res.BlockchainAnchorValid

	logger.Debug("verified credential", logfields.WithCredentialID(vc.ID),
		logfields.WithIssuer(vc.Issuer))

	return res, nil
}

// VerifyBatch verifies each credential independently through a bounded
// worker pool. Results never cross-contaminate between items.
func (v *Verifier) VerifyBatch(ctx context.Context, creds []*credential.Credential, opts *Options) ([]*Result, error) {
	results := make([]*Result, len(creds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.batchConcurrency)

	for i := range creds {
		i := i

		g.Go(func() error {
			res, err := v.Verify(gctx, creds[i], opts)
			if err != nil {
				return err
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("verified credential batch", logfields.WithBatchSize(len(creds)))

	return results, nil
}

// checkOutcome is one toggle-able check's contribution to the result.
type checkOutcome struct {
	ok       bool
	errs     []CheckError
	warnings []string
}

func pass() checkOutcome {
	return checkOutcome{ok: true}
}

func fail(code Code, msg string) checkOutcome {
	return checkOutcome{errs: []CheckError{{Code: code, Message: msg}}}
}

func degrade(strict bool, code Code, msg string) checkOutcome {
	if strict {
		return fail(code, msg)
	}

	return checkOutcome{ok: true, warnings: []string{msg}}
}

// checkProof always runs. An absent proof is a hard failure regardless of
// options.
func (v *Verifier) checkProof(ctx context.Context, vc *credential.Credential) (res *proof.VerifyResult, errs []CheckError) {
	defer func() {
		if r := recover(); r != nil {
			res = &proof.VerifyResult{IssuerValid: true}
			errs = []CheckError{{Code: CodeInvalidProof,
				Message: fmt.Sprintf("proof engine panicked: %v", r)}}
		}
	}()

	if vc.Proof == nil {
		return &proof.VerifyResult{IssuerValid: true},
			[]CheckError{{Code: CodeInvalidProof, Message: "no proof"}}
	}

	engine, err := v.engineFor(vc.Proof)
	if err != nil {
		return &proof.VerifyResult{IssuerValid: true},
			[]CheckError{{Code: CodeUnsupportedFormat, Message: err.Error()}}
	}

	res = engine.Verify(ctx, vc)

	for _, msg := range res.Errors {
		errs = append(errs, CheckError{Code: CodeInvalidProof, Message: msg})
	}

	return res, errs
}

// engineFor maps the proof variant to its registered engine.
func (v *Verifier) engineFor(p *credential.Proof) (proof.Engine, error) {
	format := ldproof.Format
	if p.SDToken != nil {
		format = sdtoken.Format
	}

	return v.engines.Resolve(format)
}

// checkIssuer always runs. A resolver failure or panic is recorded, never
// rethrown.
func (v *Verifier) checkIssuer(ctx context.Context, vc *credential.Credential) (valid bool, errs []CheckError) {
	defer func() {
		if r := recover(); r != nil {
			valid = false
			errs = []CheckError{{Code: CodeInvalidIssuer,
				Message: fmt.Sprintf("issuer resolution panicked: %v", r)}}
		}
	}()

	if vc.Issuer == "" {
		return false, []CheckError{{Code: CodeInvalidIssuer, Message: "credential issuer is empty"}}
	}

	if v.resolver == nil {
		return false, []CheckError{{Code: CodeInvalidIssuer, Message: "no identifier resolver available"}}
	}

	if _, err := v.resolver.Resolve(ctx, vc.Issuer); err != nil {
		return false, []CheckError{{Code: CodeInvalidIssuer,
			Message: fmt.Sprintf("resolve issuer %q: %s", vc.Issuer, err)}}
	}

	return true, nil
}

func (v *Verifier) checkExpiration(vc *credential.Credential, opts *Options) checkOutcome {
	if !opts.CheckExpiration {
		return pass()
	}

	if vc.Issued != nil && vc.Issued.After(v.now()) {
		return fail(CodeNotYetValid, "credential is not yet valid")
	}

	if vc.Expired == nil {
		if vc.RawExpired != "" {
			// Deliberate non-fatal default: an unreadable date should not
			// reject an otherwise sound credential unless strict mode says so.
			return degrade(opts.StrictCollaborators, CodeExpired, "invalid expiration date format")
		}

		return pass()
	}

	if !vc.Expired.After(v.now()) {
		return fail(CodeExpired, "credential expired at "+vc.Expired.UTC().Format(time.RFC3339))
	}

	return pass()
}

func (v *Verifier) checkRevocation(ctx context.Context, vc *credential.Credential, opts *Options) (outcome checkOutcome) {
	if !opts.CheckRevocation {
		return pass()
	}

	if vc.Status == nil {
		return pass()
	}

	if v.statusList == nil {
		return degrade(opts.StrictCollaborators, CodeRevoked,
			"revocation checking requested but status list service unavailable")
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = fail(CodeRevoked, fmt.Sprintf("status list lookup panicked: %v", r))
		}
	}()

	revoked, err := v.statusList.IsRevoked(ctx, &api.StatusRef{
		ID:    vc.Status.ID,
		Type:  vc.Status.Type,
		Index: vc.Status.StatusListIndex,
	})
	if err != nil {
		return fail(CodeRevoked, fmt.Sprintf("status list lookup: %s", err))
	}

	if revoked {
		logger.Debug("credential revoked", logfields.WithCredentialID(vc.ID),
			logfields.WithStatusListID(vc.Status.ID), logfields.WithStatusIndex(vc.Status.StatusListIndex))

		return fail(CodeRevoked, "credential revoked")
	}

	return pass()
}

func (v *Verifier) checkSchema(ctx context.Context, vc *credential.Credential, opts *Options) (outcome checkOutcome) {
	if !opts.ValidateSchema {
		return pass()
	}

	if vc.Schema == nil {
		return pass()
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = fail(CodeSchemaValidationFailed, fmt.Sprintf("schema validation panicked: %v", r))
		}
	}()

	if v.schemaStore == nil {
		return degrade(opts.StrictCollaborators, CodeSchemaValidationFailed,
			fmt.Sprintf("schema %q referenced but no schema store available", vc.Schema.ID))
	}

	def, err := v.schemaStore.ResolveSchema(ctx, vc.Schema.ID)
	if err != nil {
		return degrade(opts.StrictCollaborators, CodeSchemaValidationFailed,
			fmt.Sprintf("schema definition %q not found", vc.Schema.ID))
	}

	if v.schemas == nil {
		return fail(CodeSchemaValidationFailed, "no schema validator registry configured")
	}

	logger.Debug("validating credential subject", logfields.WithSchemaID(vc.Schema.ID),
		logfields.WithSchemaFormat(schema.DetectFormat(def)))

	subjectDoc := make(map[string]interface{}, len(vc.Subject.Claims)+1)
	for k, val := range vc.Subject.Claims {
		subjectDoc[k] = val
	}

	if vc.Subject.ID != "" {
		subjectDoc["id"] = vc.Subject.ID
	}

	if err := v.schemas.ValidateSubject(subjectDoc, def, ""); err != nil {
		return fail(CodeSchemaValidationFailed, err.Error())
	}

	return pass()
}

func (v *Verifier) checkAnchor(ctx context.Context, vc *credential.Credential, opts *Options) (outcome checkOutcome) {
	if !opts.VerifyBlockchainAnchor {
		return pass()
	}

	ev := anchor.ExtractEvidence(vc)
	if ev == nil {
		return pass()
	}

	if err := anchor.ValidateStructure(ev); err != nil {
		return fail(CodeInvalidProof, fmt.Sprintf("anchor evidence: %s", err))
	}

	if v.anchorVerifier == nil {
		return degrade(opts.StrictCollaborators, CodeInvalidProof,
			"anchor verification requested but anchor verifier unavailable")
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = fail(CodeInvalidProof, fmt.Sprintf("anchor verification panicked: %v", r))
		}
	}()

	ok, err := v.anchorVerifier.VerifyAnchor(ctx, ev)
	if err != nil {
		return fail(CodeInvalidProof, fmt.Sprintf("verify anchor: %s", err))
	}

	if !ok {
		return fail(CodeInvalidProof, "anchor not found on chain "+ev.ChainID)
	}

	return pass()
}
