package registry

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/sic2007.yaml
var sic2007 []byte

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	return Parse(bytes.NewReader(sic2007))
})

// Default returns the embedded UK SIC 2007 registry. It is parsed once.
func Default() (*Registry, error) {
	return loadDefault()
}

// Parse reads a registry in YAML form.
func Parse(r io.Reader) (*Registry, error) {
	var d Data
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, eris.Wrap(err, "registry: decode yaml")
	}
	if len(d.Codes) == 0 {
		return nil, eris.New("registry: no codes listed")
	}
	return New(d)
}

// LoadFile reads a registry from the given path. An empty path selects the
// embedded registry.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: open file")
	}
	defer f.Close() //nolint:errcheck

	reg, err := Parse(f)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: load %s", path)
	}
	return reg, nil
}
