package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/mash-logic/pkg/inspect"
)

func mustPath(t *testing.T, s string) *inspect.Path {
	t.Helper()
	p, err := inspect.ParsePath(s)
	require.NoError(t, err)
	return p
}
