package filex

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEnsureParentDir_Creates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "tokens.db")

	require.NoError(t, EnsureParentDir(path))

	fi, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, fi.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm())
	}

	require.NoError(t, EnsureParentDir(path), "second call is a no-op")
}

func TestEnsureParentDir_FailsIfFileInTheWay(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a"), []byte("x"), 0o600))

	require.Error(t, EnsureParentDir(filepath.Join(tmp, "a", "tokens.db")))
}

func TestReadDataURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alice.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	got, err := ReadDataURI(path)
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader), got)
}

func TestReadDataURI_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadDataURI(filepath.Join(dir, "missing.png"))
	require.Error(t, err)

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o600))
	_, err = ReadDataURI(text)
	require.ErrorIs(t, err, ErrNotAnImage)

	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, append(pngHeader, []byte(strings.Repeat("x", MaxPictureSize))...), 0o600))
	_, err = ReadDataURI(big)
	require.ErrorContains(t, err, "larger than")
}
