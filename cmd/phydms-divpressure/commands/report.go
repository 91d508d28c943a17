package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jbloom/phydms/internal/core/jobset"
	"github.com/jbloom/phydms/internal/core/modelcomp"
	"github.com/jbloom/phydms/internal/infra/raxml"
)

// ReportAction は完了済みの実行結果からレポートだけを再生成するコマンドのアクション
// ジョブの再実行は行わず、既存の出力ファイルを読み直して集計する
func ReportAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	// ツリーパスは展開に必須だが、レポート再生成では中身を参照しない
	// （省略時はツリービルダーの出力規約から補完する）
	if opts.Build.Tree == "" {
		opts.Build.Tree = raxml.TreePath(opts.Build.Alignment, outputDir(opts.Build.OutPrefix))
	}

	// 実行時と同じ展開を再現して出力ファイルの所在を得る
	set, err := jobset.Build(opts.Build)
	if err != nil {
		return fmt.Errorf("ジョブ展開に失敗: %w", err)
	}

	records, err := modelcomp.Aggregate(set)
	if err != nil {
		return fmt.Errorf("結果の集計に失敗: %w", err)
	}
	if err := modelcomp.WriteReports(opts.Build.OutPrefix, records); err != nil {
		return fmt.Errorf("レポートの書き出しに失敗: %w", err)
	}

	fmt.Printf("✓ モデル比較レポートを再生成しました: %s\n", opts.Build.OutPrefix+modelcomp.ComparisonFile)
	appCtx.Logger.Info("レポートを再生成", "records", len(records), "outprefix", opts.Build.OutPrefix)

	return nil
}
