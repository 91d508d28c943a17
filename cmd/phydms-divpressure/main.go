package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jbloom/phydms/cmd/phydms-divpressure/commands"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "phydms-divpressure",
		Usage: "部位別の多様化圧仮説をモデル比較で一括検定する",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "ジョブ一式を実行してモデル比較レポートを生成",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "実行マニフェスト（YAML、フラグが優先される）",
					},
					&cli.StringFlag{
						Name:  "alignment",
						Usage: "コドンアラインメント（FASTA）",
					},
					&cli.StringFlag{
						Name:  "prefs",
						Usage: "アミノ酸選好ファイル（CSV）",
					},
					&cli.StringFlag{
						Name:  "tree",
						Usage: "入力ツリー（Newick、省略時はツリービルダーで推定）",
					},
					&cli.StringSliceFlag{
						Name:  "divpressure",
						Usage: "多様化圧ファイル（CSV、複数指定可）",
					},
					&cli.IntFlag{
						Name:  "randomizations",
						Usage: "圧ファイルごとのランダム化陰性対照の数",
					},
					&cli.IntFlag{
						Name:  "ncpus",
						Usage: "CPUバジェット（省略時は環境変数またはホストCPU数）",
					},
					&cli.StringFlag{
						Name:  "outprefix",
						Usage: "出力ファイルの共通プレフィックス（省略時は divpressure/）",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "置換モデルのファミリ名（省略時は ExpCM）",
					},
					&cli.BoolFlag{
						Name:  "omegabysite",
						Usage: "サイトごとのω検定出力を追加",
					},
					&cli.BoolFlag{
						Name:  "diffprefsbysite",
						Usage: "サイトごとの選好差分出力を追加",
					},
				},
				Action: commands.RunAction,
			},
			{
				Name:  "report",
				Usage: "完了済みの実行結果からレポートだけを再生成",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "実行マニフェスト（YAML、フラグが優先される）",
					},
					&cli.StringFlag{
						Name:  "alignment",
						Usage: "コドンアラインメント（FASTA）",
					},
					&cli.StringFlag{
						Name:  "prefs",
						Usage: "アミノ酸選好ファイル（CSV）",
					},
					&cli.StringFlag{
						Name:  "tree",
						Usage: "実行時に使った入力ツリー（省略時は推定出力の規約から補完）",
					},
					&cli.StringSliceFlag{
						Name:  "divpressure",
						Usage: "多様化圧ファイル（CSV、複数指定可）",
					},
					&cli.IntFlag{
						Name:  "randomizations",
						Usage: "圧ファイルごとのランダム化陰性対照の数",
					},
					&cli.StringFlag{
						Name:  "outprefix",
						Usage: "出力ファイルの共通プレフィックス（省略時は divpressure/）",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "置換モデルのファミリ名（省略時は ExpCM）",
					},
					&cli.BoolFlag{
						Name:  "omegabysite",
						Usage: "サイトごとのω検定出力を追加",
					},
					&cli.BoolFlag{
						Name:  "diffprefsbysite",
						Usage: "サイトごとの選好差分出力を追加",
					},
				},
				Action: commands.ReportAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
