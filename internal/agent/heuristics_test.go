package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicNotes_InteractivePrompt(t *testing.T) {
	t.Parallel()

	res := CommandResult{Stdout: "Do you want to continue? [Y/n]"}
	notes := heuristicNotes("apt-get install jq", res)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "non-interactive flag")
}

func TestHeuristicNotes_SilentDownload(t *testing.T) {
	t.Parallel()

	res := CommandResult{Stdout: ""}
	notes := heuristicNotes("curl -sO https://example.com/data.tar.gz", res)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "verify the target file exists")

	// A failed download gets failure feedback already; no note.
	res.Code = 22
	assert.Empty(t, heuristicNotes("curl -sO https://example.com/data.tar.gz", res))
}

func TestHeuristicNotes_Quiet(t *testing.T) {
	t.Parallel()

	res := CommandResult{Stdout: "total 4\n-rw-r--r-- 1 root root 12 file.txt"}
	assert.Empty(t, heuristicNotes("ls -l /tmp", res))
}

func TestHeuristicNotes_ChattyDownloadIsFine(t *testing.T) {
	t.Parallel()

	res := CommandResult{Stdout: "Cloning into 'repo'...\nremote: Enumerating objects: 120, done."}
	assert.Empty(t, heuristicNotes("git clone https://example.com/repo.git", res))
}
