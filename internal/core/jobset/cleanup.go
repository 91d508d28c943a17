package jobset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// RemoveStaleOutputs は前回の実行が残した出力ファイルを削除する
//
// 期待される出力名に一致する既存ファイルへ追記されるのを防ぐため、
// ジョブ起動前に必ず呼ぶ。存在しないファイルはエラーにしない。
func RemoveStaleOutputs(set *Set) error {
	for _, j := range set.Jobs() {
		for _, path := range j.ExpectedOutputs() {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove stale output %s: %w", path, err)
			}
		}
	}
	return nil
}

// CleanupIntermediates は集計成功後に中間ファイルを削除する
//
// 対象はランダム化スクラッチディレクトリと、ベースライン以外のジョブの
// ツリーファイル（ベースラインのツリーをスケールしただけで再現可能なもの）。
// 尤度・パラメータ・ログ・サイト別出力・ベースラインのツリーは残す。
// 失敗した実行ではこの関数を呼ばないこと（検査のため全ファイルを残す）。
func CleanupIntermediates(set *Set, outPrefix string) error {
	var errs []error

	if err := os.RemoveAll(outPrefix + RandomizedDir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove scratch dir: %w", err))
	}

	for _, j := range set.Dependents() {
		path := j.OutPrefix + SuffixTree
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove intermediate %s: %w", path, err))
		}
	}

	return errors.Join(errs...)
}
