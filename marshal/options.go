package marshal

// EncodingTagMode controls whether string and regexp values are
// annotated with their text encoding.
type EncodingTagMode int

const (
	// EncodingTagsAuto annotates values whose encoding differs from the
	// runtime's raw/binary default.
	EncodingTagsAuto EncodingTagMode = iota

	// EncodingTagsNever writes no encoding metadata at all.
	EncodingTagsNever

	// EncodingTagsAlways annotates every string and regexp, including
	// those in the default encoding.
	EncodingTagsAlways
)

type options struct {
	encodingTags EncodingTagMode
}

// Option configures a Writer or Reader.
type Option func(*options)

// WithEncodingTags selects the encoding-annotation policy.
func WithEncodingTags(mode EncodingTagMode) Option {
	return func(o *options) {
		o.encodingTags = mode
	}
}
