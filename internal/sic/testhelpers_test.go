package sic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/sic-clean/internal/registry"
)

var division86 = NewSet("86100", "86101", "86102", "86210", "86220", "86230", "86900")

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *Recorder) {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	rec := &Recorder{}
	return New(reg, append([]Option{WithSink(rec)}, opts...)...), rec
}
