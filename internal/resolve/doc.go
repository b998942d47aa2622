// Package resolve picks the active chat template for a request.
//
// A request names a choice, an optional inline template and an optional
// tokenizer. The choice is classified once into a Kind and resolved in this
// order:
//
//  1. "jinja" uses the inline template.
//  2. "tokenizer_default" uses the tokenizer's template.
//  3. "tokenizer_default_fallback_<name>" uses the tokenizer's template when it
//     has one, otherwise the catalog entry <name> (logging a warning).
//  4. Anything else is a catalog name.
//
// The result is always one of those three strings verbatim. Resolution reads
// catalog state and performs no I/O.
package resolve
