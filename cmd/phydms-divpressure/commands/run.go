package commands

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/jbloom/phydms/internal/core/jobset"
	"github.com/jbloom/phydms/internal/core/modelcomp"
	"github.com/jbloom/phydms/internal/core/scheduler"
	"github.com/jbloom/phydms/internal/infra/procexec"
	"github.com/jbloom/phydms/internal/infra/raxml"
)

// RunAction はジョブ一式を実行してモデル比較レポートを生成するコマンドのアクション
func RunAction(ctx context.Context, cmd *cli.Command) error {
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

	// 出力ディレクトリと実行ログの準備
	if err := ensureOutputDir(opts.Build.OutPrefix); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗: %w", err)
	}
	if err := appCtx.AttachRunLog(opts.Build.OutPrefix + "log.log"); err != nil {
		return err
	}

	runID := uuid.New()
	appCtx.Logger.Info("実行を開始", "run_id", runID.String(), "outprefix", opts.Build.OutPrefix)

	// CPUバジェットの決定（フラグ > 環境変数 > マニフェスト > ホストCPU数）
	budget := cmd.Int("ncpus")
	if budget == 0 {
		budget = appCtx.Config.NCPUs
	}
	if budget == 0 {
		budget = opts.ManifestNCPUs
	}
	if budget == 0 {
		budget = runtime.NumCPU()
	}
	if budget < 1 {
		budget = 1
	}

	// 入力ツリーの確保（省略時は外部ツリービルダーで推定する）
	if opts.Build.Tree == "" {
		fmt.Printf("ツリーが未指定のため %s で推定します...\n", appCtx.Config.Fitter.TreeBuilder)
		builder := raxml.New(appCtx.Config.Fitter.TreeBuilder)
		tree, err := builder.BuildTree(ctx, opts.Build.Alignment, outputDir(opts.Build.OutPrefix))
		if err != nil {
			return fmt.Errorf("ツリー推定に失敗: %w", err)
		}
		opts.Build.Tree = tree
		appCtx.Logger.Info("ツリー推定が完了", "tree", tree)
	}

	// ジョブ集合の展開
	set, err := jobset.Build(opts.Build)
	if err != nil {
		return fmt.Errorf("ジョブ展開に失敗: %w", err)
	}
	appCtx.Logger.Info("ジョブ集合を展開", "jobs", set.Len(), "baseline", set.Baseline())

	// ランダム化対照の入力ファイルを生成
	if err := jobset.WriteRandomizedInputs(opts.Build); err != nil {
		return fmt.Errorf("ランダム化入力の生成に失敗: %w", err)
	}

	// CPU割当
	if err := jobset.Allocate(set, budget); err != nil {
		return fmt.Errorf("CPU割当に失敗: %w", err)
	}

	// 前回実行の出力を削除（古い結果が混ざるのを防ぐ）
	if err := jobset.RemoveStaleOutputs(set); err != nil {
		return fmt.Errorf("古い出力の削除に失敗: %w", err)
	}

	// スケジューラで全ジョブを実行
	fmt.Printf("✓ %d 件のジョブを実行します（CPUバジェット: %d）\n", set.Len(), budget)
	sched := scheduler.New(procexec.New(), scheduler.Config{
		Program:    appCtx.Config.Fitter.Program,
		Budget:     budget,
		RunID:      runID,
		OnProgress: progressLogger(appCtx.Logger),
	})
	if err := sched.Run(ctx, set); err != nil {
		return fmt.Errorf("ジョブ実行に失敗: %w", err)
	}

	// 集計とレポート生成
	records, err := modelcomp.Aggregate(set)
	if err != nil {
		return fmt.Errorf("結果の集計に失敗: %w", err)
	}
	if err := modelcomp.WriteReports(opts.Build.OutPrefix, records); err != nil {
		return fmt.Errorf("レポートの書き出しに失敗: %w", err)
	}

	// 中間ファイルの掃除（成功時のみ）
	if err := jobset.CleanupIntermediates(set, opts.Build.OutPrefix); err != nil {
		return fmt.Errorf("中間ファイルの削除に失敗: %w", err)
	}

	fmt.Printf("✓ モデル比較レポートを %s に出力しました\n", opts.Build.OutPrefix+modelcomp.ComparisonFile)
	appCtx.Logger.Info("実行が完了", "run_id", runID.String(), "jobs", set.Len())

	return nil
}

// progressLogger はスケジューラの進捗イベントを構造化ログへ流します
func progressLogger(logger *slog.Logger) func(scheduler.Progress) {
	return func(p scheduler.Progress) {
		attrs := []any{
			"run_id", p.RunID.String(),
			"job", p.Job,
			"state", string(p.State),
			"running", p.Running,
			"completed", p.Completed,
			"total", p.Total,
			"elapsed", p.Elapsed.Round(time.Second).String(),
		}
		if p.Err != nil {
			logger.Error("ジョブ状態遷移", append(attrs, "error", p.Err.Error())...)
			return
		}
		logger.Info("ジョブ状態遷移", attrs...)
	}
}
