package modelcomp

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jbloom/phydms/internal/core/jobset"
)

// 出力プレフィックス配下に書き出すレポートのファイル名
const (
	ComparisonFile = "modelcomparison.md"
	LongFormFile   = "modelcomparison_long.csv"
)

// WriteReports は比較表と長形式CSVの両方を出力プレフィックス配下へ書き出す
func WriteReports(outPrefix string, records []Record) error {
	mdFile, err := os.Create(outPrefix + ComparisonFile)
	if err != nil {
		return fmt.Errorf("failed to create comparison report: %w", err)
	}
	defer mdFile.Close()
	if err := WriteComparisonMarkdown(mdFile, records); err != nil {
		return err
	}

	csvFile, err := os.Create(outPrefix + LongFormFile)
	if err != nil {
		return fmt.Errorf("failed to create long-form report: %w", err)
	}
	defer csvFile.Close()
	return WriteLongCSV(csvFile, records)
}

// WriteComparisonMarkdown はランク付けされたモデル比較表を Markdown 形式で書き出す
// deltaAIC の昇順に並べ、ランダム化された陰性対照は除外する
func WriteComparisonMarkdown(w io.Writer, records []Record) error {
	ranked := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Kind == jobset.PressureRandomized {
			continue
		}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DeltaAIC < ranked[j].DeltaAIC
	})

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header("Model", "deltaAIC", "LogLikelihood", "nParams", "ParamValues")

	for _, r := range ranked {
		table.Append(
			r.Job,
			fmt.Sprintf("%.2f", r.DeltaAIC),
			fmt.Sprintf("%.2f", r.LogLikelihood),
			fmt.Sprintf("%d", r.NParams),
			formatParams(r.Params),
		)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render comparison table: %w", err)
	}
	return nil
}

// WriteLongCSV はジョブごとのスカラー値を1行1値の長形式CSVで書き出す
// ランダム化された陰性対照も含める（下流のプロットで実データと比較するため）
func WriteLongCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// ヘッダー
	header := []string{"model", "divpressure", "type", "seed", "param", "value"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write long-form header: %w", err)
	}

	// データ行（対数尤度の行に続けてパラメータ行を名前順で並べる）
	for _, r := range records {
		seed := ""
		if r.Kind == jobset.PressureRandomized {
			seed = strconv.Itoa(r.Seed)
		}
		identity := []string{r.Job, r.Pressure, string(r.Kind), seed}

		row := append(append([]string(nil), identity...),
			"logLikelihood", formatValue(r.LogLikelihood))
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write long-form row: %w", err)
		}

		for _, name := range sortedParamNames(r.Params) {
			row := append(append([]string(nil), identity...),
				name, formatValue(r.Params[name]))
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write long-form row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatParams はパラメータを「名前=値」のカンマ区切りで整形する（名前順）
func formatParams(params map[string]float64) string {
	parts := make([]string, 0, len(params))
	for _, name := range sortedParamNames(params) {
		parts = append(parts, fmt.Sprintf("%s=%.2f", name, params[name]))
	}
	return strings.Join(parts, ", ")
}

func sortedParamNames(params map[string]float64) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
