package procexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jbloom/phydms/internal/core/scheduler"
)

// Runner は外部フィッティングプログラムを子プロセスとして起動する
type Runner struct{}

// New は新しいRunnerを作成する
func New() *Runner {
	return &Runner{}
}

// Start は子プロセスを起動し、監視用のハンドルを返す
// 標準出力と標準エラーは破棄する（プログラム自身が <prefix>_log.log へ
// 進行状況を書き出すため、親側で取り込む必要はない）
func (r *Runner) Start(ctx context.Context, program string, argv []string) (scheduler.Handle, error) {
	cmd := exec.CommandContext(ctx, program, argv...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", program, err)
	}

	h := &handle{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go func() {
		h.waitErr = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

var _ scheduler.Runner = (*Runner)(nil)

// handle は実行中の子プロセスを表す
type handle struct {
	cmd  *exec.Cmd
	done chan struct{}

	// waitErr は done が閉じる前に書き込まれる
	waitErr error
}

// Exited はプロセスが終了していれば true を返す（ブロックしない）
func (h *handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ExitErr はプロセスの終了結果を返す
// Exited が true を返した後でのみ意味を持つ
func (h *handle) ExitErr() error {
	select {
	case <-h.done:
		return h.waitErr
	default:
		return nil
	}
}

// Terminate はプロセスを強制終了する
// すでに終了している場合は何もしない
func (h *handle) Terminate() error {
	if h.Exited() {
		return nil
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill process: %w", err)
	}
	return nil
}

var _ scheduler.Handle = (*handle)(nil)
