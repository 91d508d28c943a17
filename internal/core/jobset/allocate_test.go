package jobset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allocSet はベースライン1件と依存ジョブn件の集合を組み立てる
func allocSet(t *testing.T, dependents int) *Set {
	t.Helper()

	set := NewSet()
	require.NoError(t, set.Add(&Job{Key: Key{Prefs: "p", Kind: PressureNone}, Name: "baseline"}))
	for i := 0; i < dependents; i++ {
		j := &Job{
			Key:  Key{Prefs: "p", Pressure: fmt.Sprintf("f%d", i), Kind: PressureTrue},
			Name: fmt.Sprintf("dep%d", i),
		}
		require.NoError(t, set.Add(j))
	}
	return set
}

func TestAllocate_SplitsBudgetAcrossDependents(t *testing.T) {
	set := allocSet(t, 2)
	require.NoError(t, Allocate(set, 16))

	// (16 - 2) / 2 = 7
	baseline, _ := set.Get("baseline")
	assert.Equal(t, 1, baseline.NCPUs)
	for _, j := range set.Dependents() {
		assert.Equal(t, 7, j.NCPUs, j.Name)
	}
}

func TestAllocate_FloorsAtOneWorker(t *testing.T) {
	set := allocSet(t, 5)
	require.NoError(t, Allocate(set, 4))

	// (4 - 2) / 5 = 0 だが下限は 1
	for _, j := range set.Jobs() {
		assert.Equal(t, 1, j.NCPUs, j.Name)
	}
}

func TestAllocate_BaselineOnlySet(t *testing.T) {
	set := allocSet(t, 0)
	require.NoError(t, Allocate(set, 8))

	baseline, _ := set.Get("baseline")
	assert.Equal(t, 1, baseline.NCPUs)
}

func TestAllocate_RejectsNonPositiveBudget(t *testing.T) {
	set := allocSet(t, 2)
	assert.Error(t, Allocate(set, 0))
	assert.Error(t, Allocate(set, -4))
}

func TestAllocate_RejectsDoubleAllocation(t *testing.T) {
	set := allocSet(t, 2)
	require.NoError(t, Allocate(set, 8))

	err := Allocate(set, 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already assigned")
}
