/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logfields

import (
	"go.uber.org/zap"
)

// Log fields.
const (
	FieldCredentialID = "credentialID"
	FieldProofFormat  = "proofFormat"
	FieldCheck        = "check"
	FieldSchemaFormat = "schemaFormat"
	FieldSchemaID     = "schemaID"
	FieldIssuer       = "issuer"
	FieldStatusListID = "statusListID"
	FieldStatusIndex  = "statusIndex"
	FieldBatchSize    = "batchSize"
)

// WithCredentialID sets the credentialID field.
func WithCredentialID(value string) zap.Field {
	return zap.String(FieldCredentialID, value)
}

// WithProofFormat sets the proofFormat field.
func WithProofFormat(value string) zap.Field {
	return zap.String(FieldProofFormat, value)
}

// WithCheck sets the check field.
func WithCheck(value string) zap.Field {
	return zap.String(FieldCheck, value)
}

// WithSchemaFormat sets the schemaFormat field.
func WithSchemaFormat(value string) zap.Field {
	return zap.String(FieldSchemaFormat, value)
}

// WithSchemaID sets the schemaID field.
func WithSchemaID(value string) zap.Field {
	return zap.String(FieldSchemaID, value)
}

// WithIssuer sets the issuer field.
func WithIssuer(value string) zap.Field {
	return zap.String(FieldIssuer, value)
}

// WithStatusListID sets the statusListID field.
func WithStatusListID(value string) zap.Field {
	return zap.String(FieldStatusListID, value)
}

// WithStatusIndex sets the statusIndex field.
func WithStatusIndex(value int) zap.Field {
	return zap.Int(FieldStatusIndex, value)
}

// WithBatchSize sets the batchSize field.
func WithBatchSize(value int) zap.Field {
	return zap.Int(FieldBatchSize, value)
}
