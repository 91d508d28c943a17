package modelcomp

import (
	"github.com/jbloom/phydms/internal/core/jobset"
)

// Record は1ジョブのモデル適合結果を表す
// 集計後は不変として扱う
type Record struct {
	// Job はジョブ名（比較表の Model 列になる）
	Job string
	// Pressure は多様化圧ファイルのベース名（ベースラインでは空）
	Pressure string
	// Kind は圧種別（none / true / randomized）
	Kind jobset.PressureKind
	// Seed はランダム化された対照の乱数シード
	Seed int

	// LogLikelihood は適合済みモデルの対数尤度
	LogLikelihood float64
	// NParams は適合されたパラメータの数
	NParams int
	// Params はパラメータ名から適合値への写像
	Params map[string]float64

	// DeltaAIC はバッチ内最小値を0とした相対AIC
	DeltaAIC float64
}
