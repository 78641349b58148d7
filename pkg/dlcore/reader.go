package dlcore

import "io"

// countingReader wraps an io.Reader and invokes a callback synchronously
// after each successful read with the number of bytes read, so a caller
// can drive per-chunk progress events and checkpoint thresholds from the
// read loop it already has, without a separate counting pass.
type countingReader struct {
	r io.Reader
	c func(n int)
}

func newCountingReader(r io.Reader, onRead func(n int)) *countingReader {
	return &countingReader{r: r, c: onRead}
}

func (p *countingReader) Read(b []byte) (n int, err error) {
	n, err = p.r.Read(b)
	if n > 0 {
		p.c(n)
	}
	return
}
