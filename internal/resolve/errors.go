package resolve

import "errors"

// Resolution failures. Returned errors wrap one of these with the offending
// choice; test with errors.Is.
var (
	ErrMissingInlineTemplate = errors.New("inline chat template required but none was supplied")
	ErrMissingTokenizer      = errors.New("tokenizer required but none was supplied")
	ErrTokenizerHasNoDefault = errors.New("tokenizer has no chat template")
	ErrUnknownTemplate       = errors.New("chat template not found")
)
