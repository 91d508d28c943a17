package raxml

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RAxML が出力するファイル名のプレフィックス
const (
	infoPrefix     = "RAxML_info."
	bestTreePrefix = "RAxML_bestTree."
)

// Builder は外部の RAxML バイナリで最尤ツリーを推定する
type Builder struct {
	prog string
}

// New は新しいBuilderを作成する
func New(prog string) *Builder {
	return &Builder{prog: prog}
}

// BuildTree はアラインメントから最尤ツリーを推定し、ツリーファイルのパスを返す
//
// モデルは GTRCAT、パーシモニーシードとスレッド数は固定とする
// （ツリーの良し悪しは下流のブランチ長最適化が吸収するため、
// ここでの探索条件は再現性だけを担保すればよい）。
// 成功時は RAxML_bestTree と RAxML_info だけを残し、他の中間ファイルは削除する。
func (b *Builder) BuildTree(ctx context.Context, alignment, workdir string) (string, error) {
	prog, err := exec.LookPath(b.prog)
	if err != nil {
		return "", fmt.Errorf("tree builder %q not found on PATH (install RAxML or supply a tree file): %w", b.prog, err)
	}

	absWorkdir, err := filepath.Abs(workdir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workdir: %w", err)
	}

	name := runName(alignment)
	cmd := exec.CommandContext(ctx, prog,
		"-s", alignment,
		"-n", name,
		"-m", "GTRCAT",
		"-p", "42",
		"-T", "2",
		"-w", absWorkdir,
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tree builder failed for %s: %w", alignment, err)
	}

	treePath := TreePath(alignment, absWorkdir)
	if _, err := os.Stat(treePath); err != nil {
		return "", fmt.Errorf("tree builder produced no best tree at %s: %w", treePath, err)
	}

	if err := pruneOutputs(absWorkdir, name); err != nil {
		return "", err
	}
	return treePath, nil
}

// TreePath は BuildTree が成功した場合に返すツリーファイルのパスを導出する
// （すでに完了した実行のパスを、再実行せずに知りたい場合に使う）
func TreePath(alignment, workdir string) string {
	absWorkdir, err := filepath.Abs(workdir)
	if err != nil {
		absWorkdir = workdir
	}
	return filepath.Join(absWorkdir, bestTreePrefix+runName(alignment))
}

// runName はアラインメントのベース名から RAxML の実行名を導出する
func runName(alignment string) string {
	base := filepath.Base(alignment)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_tree"
}

// pruneOutputs は best tree と info 以外の RAxML 中間ファイルを削除する
func pruneOutputs(workdir, name string) error {
	pattern := filepath.Join(workdir, "RAxML_*."+name)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to list tree builder outputs: %w", err)
	}
	for _, path := range matches {
		base := filepath.Base(path)
		if base == bestTreePrefix+name || base == infoPrefix+name {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove tree builder output %s: %w", path, err)
		}
	}
	return nil
}
