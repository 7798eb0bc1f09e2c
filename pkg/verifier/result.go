/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

// Code classifies a verification failure.
type Code string

// Verification failure codes.
const (
	CodeInvalidProof           Code = "InvalidProof"
	CodeInvalidIssuer          Code = "InvalidIssuer"
	CodeExpired                Code = "Expired"
	CodeRevoked                Code = "Revoked"
	CodeNotYetValid            Code = "NotYetValid"
	CodeUnsupportedFormat      Code = "UnsupportedFormat"
	CodeUntrustedIssuer        Code = "UntrustedIssuer"
	CodeSchemaValidationFailed Code = "SchemaValidationFailed"
	CodeMultipleFailures       Code = "MultipleFailures"
)

// CheckError is one recorded verification failure.
type CheckError struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e CheckError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Result is the aggregate outcome of one verification: per-check booleans,
// the ordered failure and warning lists, and the logical AND over every
// enabled check.
type Result struct {
	ProofValid            bool
	IssuerValid           bool
	NotExpired            bool
	NotRevoked            bool
	SchemaValid           bool
	BlockchainAnchorValid bool

	Valid bool

	Errors   []CheckError
	Warnings []string
}

// Code reduces the result to a single classification: empty for a valid
// result, the failure's code when exactly one check failed, and
// CodeMultipleFailures otherwise.
func (r *Result) Code() Code {
	switch len(r.Errors) {
	case 0:
		return ""
	case 1:
		return r.Errors[0].Code
	default:
		return CodeMultipleFailures
	}
}
