package merger

import "errors"

// Sentinel errors for merge operations.
var (
	ErrNoValidFiles     = errors.New("no valid files to merge")
	ErrNoDecodableFiles = errors.New("no decodable files to merge")
	ErrDecode           = errors.New("document could not be decoded")
	ErrConcatenate      = errors.New("page concatenation failed")
)
