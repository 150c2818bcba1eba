package nlp

import "errors"

// errAnalyzerPanic is the sentinel used internally when a pluggable
// sentiment analyzer panics, triggering spec.md §7's NLP-failure
// degradation path. An error returned by the analyzer is passed through as
// is.
var errAnalyzerPanic = errors.New("nlp: sentiment analyzer failed")
