package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jbloom/phydms/internal/core/jobset"
)

// defaultPollInterval はプロセス生存確認と投入判断のポーリング間隔
const defaultPollInterval = time.Second

// ErrMissingArtifact はプロセス終了後に期待出力が見つからないことを表す
// 外部プログラムの契約はジョブ単位の全か無かであり、この失敗は実行全体を中断する
var ErrMissingArtifact = errors.New("expected output artifact missing")

// Config はスケジューラの設定
type Config struct {
	// Program は外部フィッティングプログラム
	Program string
	// Budget は同時に実行できる子プロセス数の上限
	Budget int
	// PollInterval はポーリング間隔（省略時は1秒）
	PollInterval time.Duration
	// RunID は実行全体の識別子（省略時は自動生成）
	RunID uuid.UUID
	// OnProgress は状態遷移ごとに呼ばれるコールバック
	OnProgress func(Progress)
}

// Scheduler はジョブ集合を有限状態機械として実行する
//
// 制御は単一ゴルーチンの協調的ポーリングループで行い、実際の処理は
// すべて子プロセス側で走る。状態表はスケジューラだけが更新する。
type Scheduler struct {
	runner Runner
	config Config
}

// New は新しいSchedulerを作成する
func New(runner Runner, config Config) *Scheduler {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.RunID == uuid.Nil {
		config.RunID = uuid.New()
	}
	return &Scheduler{runner: runner, config: config}
}

// runState は1回の実行における唯一の状態表
type runState struct {
	set       *jobset.Set
	states    map[string]State
	handles   map[string]Handle
	startedAt time.Time
}

func (rs *runState) count(state State) int {
	n := 0
	for _, s := range rs.states {
		if s == state {
			n++
		}
	}
	return n
}

// running は実行中の子プロセス数を返す
// （Started のジョブは完了検証を経て Completed へ遷移済みのため、
// Started の数がそのまま実行中の数になる）
func (rs *runState) running() int {
	return rs.count(StateStarted)
}

// Run はジョブ集合全体を完了まで実行する
//
// ベースラインジョブを単独で先に完了させたのち、残りを同時実行数の
// 上限内でポーリング投入する。いずれかのジョブが失敗した時点で
// 残存する子プロセスを強制終了し、エラーを返す（リトライも部分継続もない）。
func (s *Scheduler) Run(ctx context.Context, set *jobset.Set) error {
	if s.config.Budget < 1 {
		return fmt.Errorf("cpu budget must be >= 1, got %d", s.config.Budget)
	}
	if set.Len() == 0 {
		return fmt.Errorf("job set is empty")
	}
	baseline := set.Baseline()
	if baseline == "" {
		return fmt.Errorf("job set has no baseline job")
	}

	rs := &runState{
		set:       set,
		states:    make(map[string]State, set.Len()),
		handles:   make(map[string]Handle, set.Len()),
		startedAt: time.Now(),
	}
	for _, name := range set.Names() {
		rs.states[name] = StatePending
	}

	if err := s.runBaseline(ctx, rs, baseline); err != nil {
		s.terminateLive(rs)
		return err
	}
	if err := s.runPool(ctx, rs); err != nil {
		s.terminateLive(rs)
		return err
	}
	return nil
}

// runBaseline はベースラインジョブを単独で完了まで実行する
// 最適化済みツリーが他の全ジョブの入力になるため、重なりは許されない
func (s *Scheduler) runBaseline(ctx context.Context, rs *runState, name string) error {
	j, ok := rs.set.Get(name)
	if !ok {
		return fmt.Errorf("baseline job %s not in set", name)
	}

	h, err := s.start(ctx, rs, j)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		if h.Exited() {
			// ベースラインに限り終了コードも失敗条件になる
			if exitErr := h.ExitErr(); exitErr != nil {
				err := fmt.Errorf("baseline job %s exited abnormally: %w", name, exitErr)
				s.transition(rs, name, StateFailed, err)
				return err
			}
			return s.complete(rs, j)
		}

		select {
		case <-ctx.Done():
			err := fmt.Errorf("run aborted: %w", ctx.Err())
			s.transition(rs, name, StateFailed, err)
			return err
		case <-ticker.C:
		}
	}
}

// runPool は残りのジョブを固定間隔のポーリングで完了まで実行する
//
// 上限は実行中の子プロセスの「数」で数え、ジョブごとのCPU割当の合計は
// 見ない（意図的に保存している単純化であり、割当が1を超える場合は
// 過剰割当になりうる）。投入は1ティックにつき最大1ジョブで、順序は
// ジョブ集合の挿入順に従う。
func (s *Scheduler) runPool(ctx context.Context, rs *runState) error {
	dependents := rs.set.Dependents()
	next := 0

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		// 完了検出: 実行中ジョブのプロセス終了を観測し、出力を検証する
		for _, j := range dependents {
			if rs.states[j.Name] != StateStarted {
				continue
			}
			if !rs.handles[j.Name].Exited() {
				continue
			}
			// 依存ジョブの終了コードは見ない（出力ファイルの存在が完了の契約）
			if err := s.complete(rs, j); err != nil {
				return err
			}
		}

		// 投入: 枠が空いていれば1ティックにつき1ジョブだけ投入する
		if next < len(dependents) && rs.running() < s.config.Budget {
			if _, err := s.start(ctx, rs, dependents[next]); err != nil {
				return err
			}
			next++
		}

		if rs.count(StateCompleted) == rs.set.Len() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("run aborted: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// start は外部プロセスを起動し Started へ遷移させる
func (s *Scheduler) start(ctx context.Context, rs *runState, j *jobset.Job) (Handle, error) {
	h, err := s.runner.Start(ctx, s.config.Program, j.Argv())
	if err != nil {
		err = fmt.Errorf("failed to start job %s: %w", j.Name, err)
		s.transition(rs, j.Name, StateFailed, err)
		return nil, err
	}
	rs.handles[j.Name] = h
	s.transition(rs, j.Name, StateStarted, nil)
	return h, nil
}

// complete はプロセス終了後の出力検証を行い Completed へ遷移させる
// 期待される出力がひとつでも欠けていれば実行全体の失敗とする
func (s *Scheduler) complete(rs *runState, j *jobset.Job) error {
	if err := verifyArtifacts(j); err != nil {
		s.transition(rs, j.Name, StateFailed, err)
		return err
	}
	s.transition(rs, j.Name, StateCompleted, nil)
	return nil
}

// transition は状態表を更新し、進捗イベントを通知する
func (s *Scheduler) transition(rs *runState, name string, state State, err error) {
	rs.states[name] = state

	if s.config.OnProgress == nil {
		return
	}
	s.config.OnProgress(Progress{
		RunID:     s.config.RunID,
		Job:       name,
		State:     state,
		Running:   rs.running(),
		Completed: rs.count(StateCompleted),
		Total:     rs.set.Len(),
		Elapsed:   time.Since(rs.startedAt),
		Err:       err,
	})
}

// terminateLive は残存する子プロセスの強制終了を試みる
// 終了の失敗はエラー伝播を妨げない（ベストエフォート）
func (s *Scheduler) terminateLive(rs *runState) {
	for _, h := range rs.handles {
		if h.Exited() {
			continue
		}
		_ = h.Terminate()
	}
}

// verifyArtifacts はジョブの期待出力が全て存在することを確認する
func verifyArtifacts(j *jobset.Job) error {
	for _, path := range j.ExpectedOutputs() {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: job %s expected %s", ErrMissingArtifact, j.Name, path)
		}
	}
	return nil
}
