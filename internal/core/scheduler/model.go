package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// State はジョブの実行状態を表す
// 遷移は Pending→Started→Completed または Started→Failed の前進のみで、
// 逆戻りはしない
type State string

const (
	StatePending   State = "pending"   // 未投入
	StateStarted   State = "started"   // 外部プロセスが起動済み
	StateCompleted State = "completed" // プロセス終了かつ全出力ファイル検証済み
	StateFailed    State = "failed"    // 終端状態（実行全体を中断する）
)

// Progress はスケジューラが報告する構造化された進捗イベントを表す
type Progress struct {
	// RunID は実行全体の識別子（ログの突き合わせ用）
	RunID uuid.UUID
	// Job は遷移したジョブの名前
	Job string
	// State は遷移後の状態
	State State
	// Running は現在実行中の子プロセス数
	Running int
	// Completed は完了済みジョブ数
	Completed int
	// Total はジョブ総数
	Total int
	// Elapsed は実行開始からの経過時間
	Elapsed time.Duration
	// Err は失敗遷移のときの原因（それ以外は nil）
	Err error
}
