package jobset

import "fmt"

// orchestrationHeadroom はオーケストレーション自身のために確保するCPU数
const orchestrationHeadroom = 2

// Allocate は総CPUバジェットをジョブごとのワーカー数へ配分する
//
// ベースラインは常に 1、残りのフィッティングジョブ N 件には
// max(1, (budget-2)/N) を割り当てる（整数の切り捨て除算）。
// この割当は外部プログラムへの助言値であり、スケジューラの同時実行数の
// 上限（budget で別途制御）には影響しない。
func Allocate(set *Set, budget int) error {
	if budget < 1 {
		return fmt.Errorf("cpu budget must be >= 1, got %d", budget)
	}

	dependents := set.Dependents()
	perJob := 1
	if n := len(dependents); n > 0 {
		perJob = (budget - orchestrationHeadroom) / n
		if perJob < 1 {
			perJob = 1
		}
	}

	for _, j := range set.Jobs() {
		if j.NCPUs != 0 {
			return fmt.Errorf("cpu allocation already assigned for job %s", j.Name)
		}
		if j.IsBaseline() {
			j.NCPUs = 1
			continue
		}
		j.NCPUs = perJob
	}

	return nil
}
