package llm

import "errors"

// ErrEmptyResponse means the provider call succeeded but carried no usable
// text. It is not retried: the request itself was fine.
var ErrEmptyResponse = errors.New("provider returned an empty response")

// ErrMalformedEmbedding means the provider returned the wrong number of
// vectors or vectors of the wrong dimensionality.
var ErrMalformedEmbedding = errors.New("provider returned malformed embedding")
