package modelcomp

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbloom/phydms/internal/core/jobset"
)

func reportTestRecords() []Record {
	return []Record{
		{
			Job:           "prefs_nodivpressure",
			Kind:          jobset.PressureNone,
			LogLikelihood: -2010,
			NParams:       4,
			Params:        map[string]float64{"kappa": 4.1, "omega": 0.5},
			DeltaAIC:      18,
		},
		{
			Job:           "prefs_divpressure_entropy",
			Pressure:      "entropy",
			Kind:          jobset.PressureTrue,
			LogLikelihood: -2000,
			NParams:       5,
			Params:        map[string]float64{"deltar": 2.0, "omega": 0.3},
			DeltaAIC:      0,
		},
		{
			Job:           "prefs_divpressure_entropy_random_0",
			Pressure:      "entropy",
			Kind:          jobset.PressureRandomized,
			Seed:          0,
			LogLikelihood: -2008,
			NParams:       5,
			Params:        map[string]float64{"deltar": 0.25},
			DeltaAIC:      16,
		},
	}
}

func TestWriteComparisonMarkdown_RanksByDeltaAIC(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparisonMarkdown(&buf, reportTestRecords()))
	out := buf.String()

	// ランダム化対照は比較表に出さない
	assert.NotContains(t, out, "random_0")

	// deltaAIC の昇順: 実データ行がベースライン行より先に来る
	trueAt := strings.Index(out, "prefs_divpressure_entropy")
	baselineAt := strings.Index(out, "prefs_nodivpressure")
	require.NotEqual(t, -1, trueAt)
	require.NotEqual(t, -1, baselineAt)
	assert.Less(t, trueAt, baselineAt)

	// ヘッダーの表記はそのまま保つ
	assert.Contains(t, out, "Model")
	assert.Contains(t, out, "deltaAIC")
	assert.Contains(t, out, "ParamValues")

	// パラメータは「名前=値」のカンマ区切り（名前順）
	assert.Contains(t, out, "deltar=2.00, omega=0.30")
	assert.Contains(t, out, "0.00")
}

func TestWriteLongCSV_IncludesRandomizedRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLongCSV(&buf, reportTestRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// ヘッダー + レコードごとに (対数尤度1行 + パラメータ行)
	require.Len(t, rows, 1+3+3+2)
	assert.Equal(t, []string{"model", "divpressure", "type", "seed", "param", "value"}, rows[0])

	// 各レコードの先頭行は対数尤度、続けてパラメータが名前順に並ぶ
	assert.Equal(t, []string{"prefs_nodivpressure", "", "none", "", "logLikelihood", "-2010"}, rows[1])
	assert.Equal(t, "kappa", rows[2][4])
	assert.Equal(t, "omega", rows[3][4])

	// ランダム化対照も長形式には含まれ、シード列が埋まる
	assert.Equal(t, []string{"prefs_divpressure_entropy_random_0", "entropy", "randomized", "0", "logLikelihood", "-2008"}, rows[7])
	assert.Equal(t, []string{"prefs_divpressure_entropy_random_0", "entropy", "randomized", "0", "deltar", "0.25"}, rows[8])

	// ランダム化以外のレコードはシード列が空のまま
	assert.Equal(t, "", rows[4][3])
}

func TestWriteReports_CreatesBothFiles(t *testing.T) {
	outPrefix := t.TempDir() + string(os.PathSeparator)

	require.NoError(t, WriteReports(outPrefix, reportTestRecords()))

	md, err := os.ReadFile(outPrefix + ComparisonFile)
	require.NoError(t, err)
	assert.Contains(t, string(md), "prefs_nodivpressure")

	long, err := os.ReadFile(outPrefix + LongFormFile)
	require.NoError(t, err)
	assert.Contains(t, string(long), "logLikelihood")
}
