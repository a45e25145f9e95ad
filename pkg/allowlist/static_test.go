package allowlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStaticFile(t *testing.T) {
	content := `# seeded allowlist
0x1234567890123456789012345678901234567890
0xABCDEF0123456789ABCDEF0123456789ABCDEF01

not-an-address
0xZZ34567890123456789012345678901234567890
0x1234567890123456789012345678901234567890
`
	path := filepath.Join(t.TempDir(), "allowlist.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	list, err := LoadStaticFile(path)
	require.NoError(t, err)

	ctx := context.Background()

	// duplicates and invalid lines collapse to two entries
	count, err := list.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ok, err := list.Contains(ctx, "0x1234567890123456789012345678901234567890")
	require.NoError(t, err)
	assert.True(t, ok)

	// entries are stored normalized
	ok, err = list.Contains(ctx, "0xabcdef0123456789abcdef0123456789abcdef01")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = list.Contains(ctx, "0x9999999999999999999999999999999999999999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadStaticFile_Missing(t *testing.T) {
	_, err := LoadStaticFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestNewStatic_NormalizesInput(t *testing.T) {
	list := NewStatic([]string{"0xABCDEF0123456789ABCDEF0123456789ABCDEF01"})

	ok, err := list.Contains(context.Background(), "0xabcdef0123456789abcdef0123456789abcdef01")
	require.NoError(t, err)
	assert.True(t, ok)
}
