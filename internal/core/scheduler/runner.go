package scheduler

import "context"

// Handle は起動済み外部プロセスへの非ブロッキング操作を表す
type Handle interface {
	// Exited はプロセスが終了したかどうかをブロックせずに返す
	Exited() bool

	// ExitErr はプロセスの終了エラーを返す（Exited が true のときのみ有効）
	ExitErr() error

	// Terminate はプロセスを強制終了する
	// 既に終了している場合は何もしない
	Terminate() error
}

// Runner は外部プロセスの起動を抽象化する
type Runner interface {
	// Start は外部プログラムを引数つきで起動し、ハンドルを返す
	Start(ctx context.Context, program string, argv []string) (Handle, error)
}
