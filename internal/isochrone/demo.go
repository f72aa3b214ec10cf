package isochrone

import (
	"bytes"
	_ "embed"
)

//go:embed tables/parsec_demo.dat
var demoTable []byte

// Demo parses the embedded two-age solar-composition table.
func Demo() (*Table, error) {
	t, err := Parse(bytes.NewReader(demoTable))
	if err != nil {
		return nil, err
	}
	t.Path = "builtin:parsec_demo"
	return t, nil
}
