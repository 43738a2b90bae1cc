package uuid_test

import (
	"testing"

	guuid "github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fsbdata/disclosure-crawler/internal/id/uuid"
)

func TestNewIDGeneratesValidUUID7(t *testing.T) {
	t.Parallel()

	gen := uuid.NewGenerator()

	first, err := gen.NewID()
	require.NoError(t, err)
	second, err := gen.NewID()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	parsed, err := guuid.Parse(first)
	require.NoError(t, err)
	require.Equal(t, guuid.Version(7), parsed.Version())
}
