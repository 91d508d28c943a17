package jobset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuildConfig() BuildConfig {
	return BuildConfig{
		Alignment:      "aln/HA.fasta",
		Prefs:          "prefs/HA_prefs.csv",
		Tree:           "trees/HA.newick",
		PressureFiles:  []string{"pressure/entropy.csv", "pressure/contacts.csv"},
		Randomizations: 2,
		OutPrefix:      "out/",
	}
}

func TestBuild_ExpandsBaselineAndDependents(t *testing.T) {
	set, err := Build(testBuildConfig())
	require.NoError(t, err)

	// ベースライン1件 + 圧ファイル2件 ×（実データ1 + ランダム化2）
	require.Equal(t, 7, set.Len())

	baseline, ok := set.Get(set.Baseline())
	require.True(t, ok)
	assert.Equal(t, "HA_prefs_nodivpressure", baseline.Name)
	assert.Equal(t, BrlenOptimize, baseline.Brlen)
	assert.True(t, baseline.IsBaseline())

	// 先頭はベースライン、以降は圧ファイルの指定順
	names := set.Names()
	assert.Equal(t, []string{
		"HA_prefs_nodivpressure",
		"HA_prefs_divpressure_entropy",
		"HA_prefs_divpressure_entropy_random_0",
		"HA_prefs_divpressure_entropy_random_1",
		"HA_prefs_divpressure_contacts",
		"HA_prefs_divpressure_contacts_random_0",
		"HA_prefs_divpressure_contacts_random_1",
	}, names)
}

func TestBuild_DependentsUseBaselineTree(t *testing.T) {
	cfg := testBuildConfig()
	set, err := Build(cfg)
	require.NoError(t, err)

	// ベースラインだけがユーザ指定のツリーを使う
	baseline, _ := set.Get(set.Baseline())
	assert.Equal(t, cfg.Tree, baseline.Args[1])

	// 依存ジョブはベースラインの最適化済みツリーをスケールして使う
	baselineTree := "out/HA_prefs_nodivpressure" + SuffixTree
	for _, j := range set.Dependents() {
		assert.Equal(t, baselineTree, j.Args[1], j.Name)
		assert.Equal(t, BrlenScale, j.Brlen, j.Name)
	}
}

func TestBuild_RandomizedJobsPointAtScratchInputs(t *testing.T) {
	set, err := Build(testBuildConfig())
	require.NoError(t, err)

	j, ok := set.Get("HA_prefs_divpressure_entropy_random_1")
	require.True(t, ok)
	assert.Equal(t, PressureRandomized, j.Key.Kind)
	assert.Equal(t, 1, j.Key.Seed)

	want := filepath.Join("out/"+RandomizedDir, "entropy_random_1.csv")
	assert.Contains(t, j.Args, "--divpressure")
	assert.Contains(t, j.Args, want)
}

func TestBuild_ValidatesInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BuildConfig)
	}{
		{"missing alignment", func(c *BuildConfig) { c.Alignment = "" }},
		{"missing prefs", func(c *BuildConfig) { c.Prefs = "" }},
		{"missing tree", func(c *BuildConfig) { c.Tree = "" }},
		{"negative randomizations", func(c *BuildConfig) { c.Randomizations = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testBuildConfig()
			tt.mutate(&cfg)
			_, err := Build(cfg)
			assert.Error(t, err)
		})
	}
}

func TestBuild_RejectsWhitespacePaths(t *testing.T) {
	cfg := testBuildConfig()
	cfg.PressureFiles = []string{"pressure/solvent accessibility.csv"}

	_, err := Build(cfg)
	require.ErrorIs(t, err, ErrWhitespacePath)
}

func TestBuild_RejectsDuplicateIdentity(t *testing.T) {
	cfg := testBuildConfig()
	// 別ディレクトリでもベース名が同じならジョブ名が衝突する
	cfg.PressureFiles = []string{"a/entropy.csv", "b/entropy.csv"}

	_, err := Build(cfg)
	require.ErrorIs(t, err, ErrDuplicateJob)
}

func TestJobArgv_AppendsWorkerAndBranchFlags(t *testing.T) {
	set, err := Build(testBuildConfig())
	require.NoError(t, err)

	j, ok := set.Get("HA_prefs_divpressure_entropy")
	require.True(t, ok)
	j.NCPUs = 3

	assert.Equal(t, []string{
		"aln/HA.fasta",
		"out/HA_prefs_nodivpressure" + SuffixTree,
		"ExpCM_prefs/HA_prefs.csv",
		"out/HA_prefs_divpressure_entropy",
		"--divpressure", "pressure/entropy.csv",
		"--ncpus", "3",
		"--brlen", "scale",
	}, j.Argv())
}

func TestBuild_SiteOutputsExtendExpectations(t *testing.T) {
	cfg := testBuildConfig()
	cfg.OmegaBySite = true

	set, err := Build(cfg)
	require.NoError(t, err)

	j, _ := set.Get(set.Baseline())
	assert.Contains(t, j.Args, "--omegabysite")
	assert.Contains(t, j.OutSuffixes, SuffixOmegaBySite)
	assert.NotContains(t, j.OutSuffixes, SuffixDiffPrefsBySite)
	assert.Contains(t, j.ExpectedOutputs(), "out/HA_prefs_nodivpressure"+SuffixOmegaBySite)
}

func TestBuild_DefaultsModelFamily(t *testing.T) {
	cfg := testBuildConfig()
	cfg.ModelFamily = ""
	set, err := Build(cfg)
	require.NoError(t, err)

	j, _ := set.Get(set.Baseline())
	assert.Equal(t, "ExpCM_"+cfg.Prefs, j.Args[2])

	cfg.ModelFamily = "YNGKP_M5"
	set, err = Build(cfg)
	require.NoError(t, err)
	j, _ = set.Get(set.Baseline())
	assert.Equal(t, "YNGKP_M5_"+cfg.Prefs, j.Args[2])
}
