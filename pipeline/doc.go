// Package pipeline builds Buildkite pipeline documents in memory and renders
// them in pipeline upload wire format (JSON, or YAML for local inspection).
//
// The object model (Pipeline, CommandStep, BlockStep, etc) has these caveats:
//   - It is incomplete: the upload API accepts attributes that have no
//     first-class setter here. Use Attribute (or RemainingFields) for those.
//   - It only builds: there is no unmarshaling direction, and nothing here
//     executes a step or talks to the API.
//   - It is non-canonical: constructing a document does not guarantee the
//     upload API will accept it.
//
// Attributes that are never set do not appear in the rendered document at
// all. The one exception is the top-level env map, which renders as {} even
// when empty.
package pipeline
