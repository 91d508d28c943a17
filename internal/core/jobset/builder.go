package jobset

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// BuildConfig はジョブ展開の入力を表す
type BuildConfig struct {
	// Alignment はコドンアラインメントのパス
	Alignment string

	// Prefs はアミノ酸選好ファイルのパス
	Prefs string

	// Tree はベースラインジョブへ渡す入力ツリーのパス
	// （ユーザ指定、または外部ツリービルダーの出力）
	Tree string

	// ModelFamily は置換モデルのファミリ名（省略時は ExpCM）
	ModelFamily string

	// PressureFiles は多様化圧ファイルのパスのリスト
	PressureFiles []string

	// Randomizations は圧ファイルごとのランダム化陰性対照の数 K
	Randomizations int

	// OutPrefix は全出力ファイルの共通プレフィックス
	OutPrefix string

	// サイト別出力の追加フラグ
	OmegaBySite     bool
	DiffPrefsBySite bool
}

// Build は基本設定と変動軸からジョブ集合を展開する
//
// 展開は (圧ファイル × 圧種別 × シード) の全組合せに圧なしベースラインを
// 加えたもので、識別子の重複は設定エラーとして即座に失敗する。
// ランダム化対照の入力ファイル自体はここでは生成しない
// （WriteRandomizedInputs が別途永続化する）。
func Build(cfg BuildConfig) (*Set, error) {
	if cfg.Alignment == "" || cfg.Prefs == "" || cfg.Tree == "" {
		return nil, fmt.Errorf("alignment, prefs and tree are all required")
	}
	if cfg.Randomizations < 0 {
		return nil, fmt.Errorf("randomizations must be >= 0, got %d", cfg.Randomizations)
	}

	// 入力パスの検証（空白を含むパスは外部プログラムへ渡せない）
	paths := []string{cfg.Alignment, cfg.Prefs, cfg.Tree}
	paths = append(paths, cfg.PressureFiles...)
	for _, p := range paths {
		if containsSpace(p) {
			return nil, fmt.Errorf("%w: %q", ErrWhitespacePath, p)
		}
	}

	family := cfg.ModelFamily
	if family == "" {
		family = "ExpCM"
	}
	model := family + "_" + cfg.Prefs
	prefsName := baseName(cfg.Prefs)

	suffixes := outputSuffixes(cfg)
	set := NewSet()

	// 圧なしベースライン: 入力ツリーのブランチ長をここで一度だけ最適化する
	baseline := newJob(cfg, Key{Prefs: prefsName, Kind: PressureNone}, cfg.Tree, model, nil, suffixes)
	baseline.Brlen = BrlenOptimize
	if err := set.Add(baseline); err != nil {
		return nil, err
	}

	// 依存ジョブはベースラインの最適化済みツリーを入力とし、
	// ブランチ長のスケーリングのみ行う
	baselineTree := baseline.OutPrefix + SuffixTree

	for _, pressureFile := range cfg.PressureFiles {
		pressure := baseName(pressureFile)

		trueJob := newJob(cfg,
			Key{Prefs: prefsName, Pressure: pressure, Kind: PressureTrue},
			baselineTree, model, []string{"--divpressure", pressureFile}, suffixes)
		if err := set.Add(trueJob); err != nil {
			return nil, err
		}

		for seed := 0; seed < cfg.Randomizations; seed++ {
			randomized := RandomizedPath(cfg.OutPrefix, pressure, seed)
			randJob := newJob(cfg,
				Key{Prefs: prefsName, Pressure: pressure, Kind: PressureRandomized, Seed: seed},
				baselineTree, model, []string{"--divpressure", randomized}, suffixes)
			if err := set.Add(randJob); err != nil {
				return nil, err
			}
		}
	}

	return set, nil
}

// newJob は1ジョブ分の記述子を組み立てる
func newJob(cfg BuildConfig, key Key, tree, model string, extra []string, suffixes []string) *Job {
	name := key.Name()
	outPrefix := cfg.OutPrefix + name

	args := []string{cfg.Alignment, tree, model, outPrefix}
	args = append(args, extra...)
	if cfg.OmegaBySite {
		args = append(args, "--omegabysite")
	}
	if cfg.DiffPrefsBySite {
		args = append(args, "--diffprefsbysite")
	}

	return &Job{
		Key:         key,
		Name:        name,
		Args:        args,
		Brlen:       BrlenScale,
		OutPrefix:   outPrefix,
		OutSuffixes: suffixes,
	}
}

// outputSuffixes は設定に応じた期待出力サフィックスのリストを返す
func outputSuffixes(cfg BuildConfig) []string {
	suffixes := []string{SuffixLog, SuffixTree, SuffixLogLikelihood, SuffixModelParams}
	if cfg.OmegaBySite {
		suffixes = append(suffixes, SuffixOmegaBySite)
	}
	if cfg.DiffPrefsBySite {
		suffixes = append(suffixes, SuffixDiffPrefsBySite)
	}
	return suffixes
}

func containsSpace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}

// baseName はパスから拡張子を除いたファイル名を取り出す
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
