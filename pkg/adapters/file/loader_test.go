package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turing/examples/programs"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestFileLoader_Contract(t *testing.T) {
	want := map[string]string{
		"binaryaddition": readTestdata(t, "binaryaddition.tm"),
		"palindrome":     readTestdata(t, "palindrome.tm"),
		"noop":           readTestdata(t, "noop.txt"),
	}
	ports.RunProgramLoaderContract(t, file.NewLoader("testdata"), want)
}

func TestFileLoader_EmbeddedPrograms(t *testing.T) {
	ports.RunProgramLoaderContract(t, file.NewFSLoader(programs.FS()), programs.All())
}

func TestFileLoader_ExplicitExtension(t *testing.T) {
	src, err := file.NewLoader("testdata").GetProgram("noop.txt")
	require.NoError(t, err)
	assert.Equal(t, "0 * * s halt\n", src)
}

func TestFileLoader_InvalidNames(t *testing.T) {
	loader := file.NewLoader("testdata")
	for _, name := range []string{"", "../file/testdata/noop", "/etc/passwd"} {
		_, err := loader.GetProgram(name)
		assert.ErrorIs(t, err, domain.ErrProgramNotFound, name)
	}
}

func TestFileLoader_MissingDir(t *testing.T) {
	names, err := file.NewLoader(filepath.Join(t.TempDir(), "missing")).ListPrograms()
	require.NoError(t, err)
	assert.Empty(t, names)
}
