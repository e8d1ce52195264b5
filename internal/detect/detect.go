// Package detect classifies a statement document as CAMS or NSDL by scanning
// the leading pages for registrar-specific fingerprint phrases.
//
// All fingerprints from both registrars are compiled into a single
// Aho-Corasick matcher, so classification is one pass over the text and
// independent of the order checks are declared in.
package detect

import (
	"fmt"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/document"
)

// Registrar fingerprints are scanned on the first fingerprintPages pages.
// Each phrase is specific to one registrar's template; generic wording
// shared by both ("Consolidated Account Statement" alone) is deliberately
// absent from both sets.
const fingerprintPages = 2

var camsFingerprints = []string{
	"COMPUTER AGE MANAGEMENT SERVICES",
	"CAMS FINANCIAL INFORMATION SERVICES",
	"CAMS - CONSOLIDATED ACCOUNT STATEMENT",
	"CAMSCASADMIN",
}

var nsdlFingerprints = []string{
	"NATIONAL SECURITIES DEPOSITORY",
	"NSDL CONSOLIDATED ACCOUNT STATEMENT",
	"NSDL CAS",
	"DEMAT ACCOUNT STATEMENT",
}

// matcher covers both sets; indices below the CAMS set length are CAMS hits.
var (
	allFingerprints []string
	matcher         *ahocorasick.Matcher
)

func init() {
	allFingerprints = append(allFingerprints, camsFingerprints...)
	allFingerprints = append(allFingerprints, nsdlFingerprints...)

	patterns := make([][]byte, len(allFingerprints))
	for i, p := range allFingerprints {
		patterns[i] = []byte(p)
	}
	matcher = ahocorasick.NewMatcher(patterns)
}

// Detect identifies the registrar that produced doc. When neither or both
// fingerprint sets match, it fails with cas.ErrUnsupportedFormat carrying
// the phrases that were actually found.
func Detect(doc *document.Document) (cas.Registrar, error) {
	text := strings.ToUpper(doc.TextOfFirstPages(fingerprintPages))

	var camsHits, nsdlHits []string
	for _, idx := range matcher.Match([]byte(text)) {
		if idx < 0 || idx >= len(allFingerprints) {
			continue
		}
		if idx < len(camsFingerprints) {
			camsHits = append(camsHits, allFingerprints[idx])
		} else {
			nsdlHits = append(nsdlHits, allFingerprints[idx])
		}
	}

	switch {
	case len(camsHits) > 0 && len(nsdlHits) == 0:
		return cas.RegistrarCAMS, nil
	case len(nsdlHits) > 0 && len(camsHits) == 0:
		return cas.RegistrarNSDL, nil
	case len(camsHits) > 0 && len(nsdlHits) > 0:
		return "", fmt.Errorf("%w: both registrars matched (CAMS: %v, NSDL: %v)",
			cas.ErrUnsupportedFormat, camsHits, nsdlHits)
	default:
		return "", fmt.Errorf("%w: no registrar fingerprint found in first %d pages",
			cas.ErrUnsupportedFormat, fingerprintPages)
	}
}
