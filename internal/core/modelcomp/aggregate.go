package modelcomp

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jbloom/phydms/internal/core/jobset"
)

// Aggregate は完了したジョブ集合の出力ファイルを読み、比較可能なレコード群へ集計する
// レコードの順序はジョブ集合の挿入順に一致する
func Aggregate(set *jobset.Set) ([]Record, error) {
	records := make([]Record, 0, set.Len())
	for _, j := range set.Jobs() {
		logL, err := readLogLikelihood(j.OutPrefix + jobset.SuffixLogLikelihood)
		if err != nil {
			return nil, fmt.Errorf("failed to read log likelihood for job %s: %w", j.Name, err)
		}
		params, err := readModelParams(j.OutPrefix + jobset.SuffixModelParams)
		if err != nil {
			return nil, fmt.Errorf("failed to read model params for job %s: %w", j.Name, err)
		}
		records = append(records, Record{
			Job:           j.Name,
			Pressure:      j.Key.Pressure,
			Kind:          j.Key.Kind,
			Seed:          j.Key.Seed,
			LogLikelihood: logL,
			NParams:       len(params),
			Params:        params,
		})
	}
	applyDeltaAIC(records)
	return records, nil
}

// applyDeltaAIC は AIC = 2×(パラメータ数 − 対数尤度) を計算し、
// バッチ内の最小値が0になるよう正規化する
func applyDeltaAIC(records []Record) {
	if len(records) == 0 {
		return
	}
	min := math.Inf(1)
	for i := range records {
		records[i].DeltaAIC = 2 * (float64(records[i].NParams) - records[i].LogLikelihood)
		if records[i].DeltaAIC < min {
			min = records[i].DeltaAIC
		}
	}
	for i := range records {
		records[i].DeltaAIC -= min
	}
}

// readLogLikelihood は「... = <値>」形式の対数尤度ファイルを読む
func readLogLikelihood(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	_, value, found := strings.Cut(string(data), "=")
	if !found {
		return 0, fmt.Errorf("no '=' found in %s", path)
	}
	logL, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse log likelihood in %s: %w", path, err)
	}
	return logL, nil
}

// readModelParams は「名前 = 値」を1行ずつ並べたパラメータファイルを読む
// 空行は無視する
func readModelParams(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	params := make(map[string]float64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("malformed parameter line %q in %s", line, path)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse parameter %q in %s: %w", strings.TrimSpace(name), path, err)
		}
		params[strings.TrimSpace(name)] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return params, nil
}
