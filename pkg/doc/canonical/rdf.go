/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package canonical

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/piprate/json-gold/ld"
	"github.com/trustbloc/logutil-go/pkg/log"
)

const (
	rdfFormat          = "application/n-quads"
	defaultAlgorithm   = "URDNA2015"
	handleNormalizeErr = "Error while parsing N-Quads; invalid quad. line:"
)

var logger = log.New("vc-engine/canonical")

//nolint:gochecknoglobals
var invalidRDFLinePattern = regexp.MustCompile("[0-9]*$")

// RDFProcessor normalizes JSON-LD documents into canonical RDF datasets.
// Proof suites that operate on linked-data documents with custom contexts use
// this instead of the plain JSON canonical form.
type RDFProcessor struct {
	algorithm string
	loader    ld.DocumentLoader
}

// RDFOpt is an RDFProcessor option.
type RDFOpt func(p *RDFProcessor)

// WithDocumentLoader sets the loader used to resolve remote contexts.
// Without a loader only documents with inline contexts can be normalized.
func WithDocumentLoader(loader ld.DocumentLoader) RDFOpt {
	return func(p *RDFProcessor) {
		p.loader = loader
	}
}

// WithAlgorithm overrides the RDF dataset normalization algorithm.
func WithAlgorithm(algorithm string) RDFOpt {
	return func(p *RDFProcessor) {
		p.algorithm = algorithm
	}
}

// NewRDFProcessor returns an RDF dataset normalizer with the URDNA2015
// algorithm unless overridden.
func NewRDFProcessor(opts ...RDFOpt) *RDFProcessor {
	p := &RDFProcessor{algorithm: defaultAlgorithm}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Normalize returns the canonical RDF dataset of the given JSON-LD document
// in N-Quads form.
func (p *RDFProcessor) Normalize(doc map[string]interface{}) ([]byte, error) {
	proc := ld.NewJsonLdProcessor()

	options := ld.NewJsonLdOptions("")
	options.ProcessingMode = ld.JsonLd_1_1
	options.Algorithm = p.algorithm
	options.Format = rdfFormat
	options.ProduceGeneralizedRdf = true

	if p.loader != nil {
		options.DocumentLoader = p.loader
	}

	view, err := proc.Normalize(doc, options)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize JSON-LD document: %w", err)
	}

	result, err := p.validateView(view.(string))
	if err != nil {
		return nil, fmt.Errorf("failed to normalize due to invalid RDF dataset: %w", err)
	}

	return []byte(result), nil
}

// validateView filters invalid RDF out of the normalized view, retrying until
// parsing succeeds. Follows the handling pattern from
// https://github.com/digitalbazaar/jsonld.js/issues/199.
func (p *RDFProcessor) validateView(view string) (string, error) {
	_, err := ld.ParseNQuads(view)
	if err != nil {
		if !strings.Contains(err.Error(), handleNormalizeErr) {
			return "", err
		}

		lineNumber, e := findLineNumber(err)
		if e != nil {
			return "", fmt.Errorf("failed to locate invalid RDF data: %w", e)
		}

		logger.Warn(fmt.Sprintf("Found invalid data in normalized JSON-LD, removing line %d", lineNumber))

		return p.validateView(removeQuad(view, lineNumber-1))
	}

	return view, nil
}

func removeQuad(view string, index int) string {
	lines := strings.Split(view, "\n")

	return strings.Join(append(lines[:index], lines[index+1:]...), "\n")
}

func findLineNumber(err error) (int, error) {
	s := invalidRDFLinePattern.FindString(err.Error())

	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("unable to locate invalid RDF data line number: %w", err)
	}

	return i, nil
}
