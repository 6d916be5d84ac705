package rembed

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/soundprediction/rembed/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("first\n\n  second  \nthird"), 0644))

	lines, err := readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, lines)

	_, err = readLines(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestPrintVector(t *testing.T) {
	vec := types.EncodeVector([]float32{1, 0.5})

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"json", "[1,0.5]\n", false},
		{"base64", "AACAPwAAAD8=\n", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)

			err := printVector(cmd, vec, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCredentialSource(t *testing.T) {
	configured := types.ClientDescriptor{Name: "c1", Credential: "sk-secret-key"}
	assert.Equal(t, "configured", credentialSource(configured.Redacted()))
	assert.Equal(t, "env", credentialSource(types.ClientDescriptor{Name: "c2"}))
}
