package mock

import "github.com/fwojciec/wikidocu"

var _ wikidocu.Converter = (*Converter)(nil)

// Converter is a mock implementation of wikidocu.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
