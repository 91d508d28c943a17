package jobset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// RandomizedPath はランダム化対照の入力ファイルパスを返す
// （<outprefix>randomizedFiles/<圧ファイル名>_random_<シード>.csv）
func RandomizedPath(outPrefix, pressure string, seed int) string {
	return filepath.Join(outPrefix+RandomizedDir, fmt.Sprintf("%s_random_%d.csv", pressure, seed))
}

// WriteRandomizedInputs はランダム化対照ジョブの入力ファイルを永続化する
//
// 圧ファイルごとにサイト→値の対応を読み取り、シード i (0 <= i < K) で値の
// リストを決定論的に並べ替えて書き出す。サイトのリストは固定のまま。
// 同じシードと同じ入力に対して常に同一の出力を生成する（再実行の再現性）。
func WriteRandomizedInputs(cfg BuildConfig) error {
	if cfg.Randomizations == 0 || len(cfg.PressureFiles) == 0 {
		return nil
	}

	dir := cfg.OutPrefix + RandomizedDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create scratch dir %s: %w", dir, err)
	}

	for _, pressureFile := range cfg.PressureFiles {
		sites, values, err := readPressureCSV(pressureFile)
		if err != nil {
			return fmt.Errorf("failed to read pressure file %s: %w", pressureFile, err)
		}

		pressure := baseName(pressureFile)
		for seed := 0; seed < cfg.Randomizations; seed++ {
			permuted := permuteValues(values, seed)
			path := RandomizedPath(cfg.OutPrefix, pressure, seed)
			if err := writeRandomizedCSV(path, sites, permuted); err != nil {
				return err
			}
		}
	}

	return nil
}

// readPressureCSV はサイト別の圧ファイルを読み込む
// 形式は1行につき「サイト,値」で、# で始まる行はコメントとして無視する
func readPressureCSV(path string) (sites []string, values []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no site,value rows found")
	}

	for _, record := range records {
		sites = append(sites, record[0])
		values = append(values, record[1])
	}
	return sites, values, nil
}

// permuteValues は値のリストをシードで決定論的にシャッフルした複製を返す
// 値は文字列のまま扱う（数値としての解釈は外部プログラムの責務）
func permuteValues(values []string, seed int) []string {
	permuted := append([]string(nil), values...)
	r := rand.New(rand.NewSource(int64(seed)))
	r.Shuffle(len(permuted), func(i, j int) {
		permuted[i], permuted[j] = permuted[j], permuted[i]
	})
	return permuted
}

// writeRandomizedCSV は並べ替え済みのサイト→値対応を書き出す
func writeRandomizedCSV(path string, sites, values []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create randomized file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "#SITE,VALUE"); err != nil {
		return err
	}
	for i, site := range sites {
		if _, err := fmt.Fprintf(f, "%s,%s\n", site, values[i]); err != nil {
			return err
		}
	}
	return nil
}
