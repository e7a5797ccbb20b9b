package merger

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	api.DisableConfigDir()
}

// newConfiguration returns a fresh pdfcpu configuration per call; pdfcpu
// records command state on the configuration it is given.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// countPages decodes data and returns its page count. A document without
// pages is reported as undecodable.
func countPages(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	n, err = api.PageCount(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: document has no pages", ErrDecode)
	}
	return n, nil
}

// concatenate appends the pages of docs, in order, into one serialized PDF.
// Tests replace it to reach the incremental fallback.
var concatenate = concatenateDocuments

func concatenateDocuments(docs [][]byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrConcatenate, r)
		}
	}()

	rsc := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		rsc[i] = bytes.NewReader(d)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(rsc, &buf, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConcatenate, err)
	}
	return buf.Bytes(), nil
}
