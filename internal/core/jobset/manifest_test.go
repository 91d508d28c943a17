package jobset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func TestLoadManifest_ParsesFullDocument(t *testing.T) {
	path := writeManifest(t, `alignment: aln/HA.fasta
prefs: prefs/HA_prefs.csv
tree: trees/HA.newick
divpressure:
  - pressure/entropy.csv
  - pressure/contacts.csv
randomizations: 5
ncpus: 8
outprefix: results/
model: ExpCM
omegabysite: true
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "aln/HA.fasta", m.Alignment)
	assert.Equal(t, "prefs/HA_prefs.csv", m.Prefs)
	assert.Equal(t, "trees/HA.newick", m.Tree)
	assert.Equal(t, []string{"pressure/entropy.csv", "pressure/contacts.csv"}, m.DivPressure)
	assert.Equal(t, 5, m.Randomizations)
	assert.Equal(t, 8, m.NCPUs)
	assert.Equal(t, "results/", m.OutPrefix)
	assert.Equal(t, "ExpCM", m.ModelFamily)
	assert.True(t, m.OmegaBySite)
	assert.False(t, m.DiffPrefsBySite)
}

func TestLoadManifest_RejectsMissingRequiredFields(t *testing.T) {
	path := writeManifest(t, "tree: trees/HA.newick\n")

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifest_RejectsUnknownKeys(t *testing.T) {
	// キー名の打ち間違いは捨てずにエラーにする
	path := writeManifest(t, `alignment: aln/HA.fasta
prefs: prefs/HA_prefs.csv
randomisations: 3
`)

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifest_RejectsNegativeCounts(t *testing.T) {
	path := writeManifest(t, `alignment: aln/HA.fasta
prefs: prefs/HA_prefs.csv
randomizations: -1
`)

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifest_FailsOnMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
