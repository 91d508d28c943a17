package jobset

import (
	"errors"
	"fmt"
	"strconv"
)

// 外部フィッティングプログラムがジョブごとに生成する出力ファイルのサフィックス
const (
	SuffixLog             = "_log.log"
	SuffixTree            = "_tree.newick"
	SuffixLogLikelihood   = "_loglikelihood.txt"
	SuffixModelParams     = "_modelparams.txt"
	SuffixOmegaBySite     = "_omegabysite.txt"
	SuffixDiffPrefsBySite = "_diffprefsbysite.txt"
)

// RandomizedDir はランダム化された圧ファイルを置くスクラッチディレクトリ名
const RandomizedDir = "randomizedFiles"

// ブランチ長の扱い（外部プログラムの --brlen フラグ値）
const (
	BrlenOptimize = "optimize"
	BrlenScale    = "scale"
)

var (
	// ErrDuplicateJob は同一のジョブ識別子が二重に登録されたことを表す
	ErrDuplicateJob = errors.New("duplicate job identity")

	// ErrWhitespacePath は空白を含む入力ファイルパスを表す
	// （外部プログラムの引数パーサが空白を区別できないため設定エラーとする）
	ErrWhitespacePath = errors.New("whitespace in input path")
)

// PressureKind は多様化圧入力の種別を表す
type PressureKind string

const (
	PressureNone       PressureKind = "none"       // 圧なしベースライン
	PressureTrue       PressureKind = "true"       // 実データの圧ファイル
	PressureRandomized PressureKind = "randomized" // ランダム化された陰性対照
)

// Key はジョブの同一性を表す
// (選好セット名, 圧ファイルのベース名, 圧種別, 乱数シード) の組で一意になる
type Key struct {
	Prefs    string
	Pressure string // Kind == PressureNone のとき空
	Kind     PressureKind
	Seed     int // Kind == PressureRandomized のときのみ意味を持つ
}

// Name は識別子から一意なジョブ名を導出する
// ジョブ名は出力ファイル名の一部になるため空白を含まない
func (k Key) Name() string {
	switch k.Kind {
	case PressureTrue:
		return fmt.Sprintf("%s_divpressure_%s", k.Prefs, k.Pressure)
	case PressureRandomized:
		return fmt.Sprintf("%s_divpressure_%s_random_%d", k.Prefs, k.Pressure, k.Seed)
	default:
		return fmt.Sprintf("%s_nodivpressure", k.Prefs)
	}
}

// Job は外部フィッティングプログラムの1回の実行を表す
// Allocator による NCPUs の一度きりの設定を除き、生成後は不変として扱う
type Job struct {
	Key  Key
	Name string

	// Args は位置引数と追加フラグ（--ncpus と --brlen を除く）
	Args []string

	// Brlen はブランチ長の扱い（ベースラインは optimize、それ以外は scale）
	Brlen string

	// OutPrefix は出力ファイルのプレフィックス（<outprefix><ジョブ名>）
	OutPrefix string

	// OutSuffixes は完了検証で期待される出力サフィックスの順序付きリスト
	OutSuffixes []string

	// NCPUs は外部プログラムへ渡すワーカー数の割当（Allocatorが一度だけ設定する）
	NCPUs int
}

// Argv は外部プログラムに渡す完全な引数リストを返す
func (j *Job) Argv() []string {
	argv := make([]string, 0, len(j.Args)+4)
	argv = append(argv, j.Args...)
	argv = append(argv, "--ncpus", strconv.Itoa(j.NCPUs))
	argv = append(argv, "--brlen", j.Brlen)
	return argv
}

// ExpectedOutputs は完了検証の対象となる出力ファイルパスを返す
func (j *Job) ExpectedOutputs() []string {
	outputs := make([]string, 0, len(j.OutSuffixes))
	for _, suffix := range j.OutSuffixes {
		outputs = append(outputs, j.OutPrefix+suffix)
	}
	return outputs
}

// IsBaseline はこのジョブが圧なしベースラインかどうかを返す
func (j *Job) IsBaseline() bool {
	return j.Key.Kind == PressureNone
}

// Set は展開済みジョブの順序付き集合を表す
// 反復順序は挿入順で固定され、スケジューラの投入順序を決める
type Set struct {
	baseline string
	names    []string
	jobs     map[string]*Job
}

// NewSet は空のジョブ集合を作成する
func NewSet() *Set {
	return &Set{jobs: make(map[string]*Job)}
}

// Add はジョブを集合へ追加する
// 同一識別子の二重登録は設定エラー（ErrDuplicateJob）として拒否する
func (s *Set) Add(j *Job) error {
	if _, exists := s.jobs[j.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, j.Name)
	}
	s.names = append(s.names, j.Name)
	s.jobs[j.Name] = j
	if j.IsBaseline() && s.baseline == "" {
		s.baseline = j.Name
	}
	return nil
}

// Get は名前でジョブを引く
func (s *Set) Get(name string) (*Job, bool) {
	j, ok := s.jobs[name]
	return j, ok
}

// Baseline はベースラインジョブの名前を返す（未登録なら空）
func (s *Set) Baseline() string {
	return s.baseline
}

// Names は挿入順のジョブ名リストを返す
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Jobs は挿入順のジョブリストを返す
func (s *Set) Jobs() []*Job {
	jobs := make([]*Job, 0, len(s.names))
	for _, name := range s.names {
		jobs = append(jobs, s.jobs[name])
	}
	return jobs
}

// Dependents はベースラインを除く挿入順のジョブリストを返す
func (s *Set) Dependents() []*Job {
	jobs := make([]*Job, 0, len(s.names))
	for _, name := range s.names {
		if name == s.baseline {
			continue
		}
		jobs = append(jobs, s.jobs[name])
	}
	return jobs
}

// Len は集合内のジョブ数を返す
func (s *Set) Len() int {
	return len(s.names)
}
