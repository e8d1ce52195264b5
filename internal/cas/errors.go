package cas

import "errors"

// Fatal error kinds. Every error returned by the engine wraps exactly one of
// these sentinels; callers dispatch with errors.Is. Wrapped context carries
// the diagnostic detail (page number, fingerprint evidence, offending text)
// without exposing the statement's content.
var (
	// ErrDecryption means the PDF is encrypted and the supplied password
	// did not open it.
	ErrDecryption = errors.New("wrong password")

	// ErrCorruptDocument means the bytes are not a readable PDF.
	ErrCorruptDocument = errors.New("unreadable document")

	// ErrUnsupportedFormat means neither (or both) registrar fingerprint
	// sets matched the document.
	ErrUnsupportedFormat = errors.New("unsupported statement format")

	// ErrEmptyStatement means the document decrypted and matched a
	// registrar, but no folios or schemes could be assembled from it.
	ErrEmptyStatement = errors.New("no holdings found in statement")

	// ErrFileTooLarge means the input exceeded the configured size limit
	// and was rejected before decryption.
	ErrFileTooLarge = errors.New("input exceeds size limit")

	// ErrBalanceMismatch is returned instead of a W4001 warning when the
	// validator runs in strict mode.
	ErrBalanceMismatch = errors.New("unit balance continuity check failed")
)
