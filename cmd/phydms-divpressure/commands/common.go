package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/jbloom/phydms/internal/core/jobset"
	"github.com/jbloom/phydms/internal/platform/config"
	"github.com/jbloom/phydms/internal/platform/logger"
)

// defaultOutPrefix は outprefix 未指定時の出力プレフィックス
const defaultOutPrefix = "divpressure/"

// AppContext はコマンド実行に必要な共通コンテキストを保持します
type AppContext struct {
	Config *config.Config
	Logger *slog.Logger

	logClose func() error
}

// NewAppContext は設定ファイルを読み込み AppContext を作成します
func NewAppContext(envFile string) (*AppContext, error) {
	// 設定の読み込み（platform層を使用）
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	// ロガーの初期化（platform層を使用）
	appLogger := logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	return &AppContext{
		Config: cfg,
		Logger: appLogger,
	}, nil
}

// AttachRunLog は実行ログファイルへの複製出力を開始します
// 以降のログは標準出力と指定ファイルの両方へ書かれる
func (ac *AppContext) AttachRunLog(path string) error {
	runLogger, closeFn, err := logger.NewWithFile(logger.Config{
		Level:  logger.ParseLevel(ac.Config.Log.Level),
		Format: ac.Config.Log.Format,
	}, path)
	if err != nil {
		return fmt.Errorf("実行ログファイルの作成に失敗: %w", err)
	}
	ac.Logger = runLogger
	ac.logClose = closeFn
	return nil
}

// Close はAppContextが保持するリソースをクリーンアップします
func (ac *AppContext) Close() {
	if ac.logClose != nil {
		_ = ac.logClose()
	}
}

// runOptions はフラグとマニフェストをマージした実行時オプションを表します
type runOptions struct {
	Build jobset.BuildConfig

	// ManifestNCPUs はマニフェストに書かれたCPUバジェット（未指定は0）
	ManifestNCPUs int
}

// resolveOptions はフラグとマニフェストを突き合わせて実行時オプションを組み立てます
// 優先順位はフラグ > マニフェストの順
func resolveOptions(cmd *cli.Command) (*runOptions, error) {
	var m jobset.Manifest
	if path := cmd.String("manifest"); path != "" {
		loaded, err := jobset.LoadManifest(path)
		if err != nil {
			return nil, fmt.Errorf("マニフェストの読み込みに失敗: %w", err)
		}
		m = *loaded
	}

	build := jobset.BuildConfig{
		Alignment:       firstNonEmpty(cmd.String("alignment"), m.Alignment),
		Prefs:           firstNonEmpty(cmd.String("prefs"), m.Prefs),
		Tree:            firstNonEmpty(cmd.String("tree"), m.Tree),
		ModelFamily:     firstNonEmpty(cmd.String("model"), m.ModelFamily),
		OutPrefix:       firstNonEmpty(cmd.String("outprefix"), m.OutPrefix, defaultOutPrefix),
		PressureFiles:   cmd.StringSlice("divpressure"),
		Randomizations:  cmd.Int("randomizations"),
		OmegaBySite:     cmd.Bool("omegabysite") || m.OmegaBySite,
		DiffPrefsBySite: cmd.Bool("diffprefsbysite") || m.DiffPrefsBySite,
	}
	if len(build.PressureFiles) == 0 {
		build.PressureFiles = m.DivPressure
	}
	if build.Randomizations == 0 {
		build.Randomizations = m.Randomizations
	}

	if build.Alignment == "" {
		return nil, fmt.Errorf("alignment が未指定です（フラグまたはマニフェストで指定してください）")
	}
	if build.Prefs == "" {
		return nil, fmt.Errorf("prefs が未指定です（フラグまたはマニフェストで指定してください）")
	}

	return &runOptions{
		Build:         build,
		ManifestNCPUs: m.NCPUs,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// outputDir は出力プレフィックスからディレクトリ部分を取り出します
func outputDir(outPrefix string) string {
	return filepath.Dir(outPrefix + "_")
}

// ensureOutputDir は出力プレフィックスの親ディレクトリを作成します
func ensureOutputDir(outPrefix string) error {
	return os.MkdirAll(outputDir(outPrefix), 0755)
}
