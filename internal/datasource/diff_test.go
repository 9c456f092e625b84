package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/trackr/pkg/testutil"
)

func TestCompareDatasetsIdentical(t *testing.T) {
	ds := testutil.NewDefault().Dataset()
	diff := CompareDatasets(ds, ds, DefaultDiffOptions())
	assert.False(t, diff.HasChanges())
	assert.Contains(t, diff.Summary(), "Snapshots match")
}

func TestCompareDatasetsChanges(t *testing.T) {
	a := testutil.Flat(7, map[string][]float64{"A": {1, 2}, "Gone": {1}})
	b := testutil.Flat(7, map[string][]float64{"A": {1, 2.5, 3}, "New": {1}})
	a.Source, b.Source = "old.csv", "new.csv"

	diff := CompareDatasets(a, b, DefaultDiffOptions())
	require.True(t, diff.HasChanges())
	assert.Equal(t, []string{"New"}, diff.AddedEntities)
	assert.Equal(t, []string{"Gone"}, diff.RemovedEntities)
	require.Len(t, diff.ChangedValues, 1)
	assert.Equal(t, ValueDifference{EntityID: "A", Date: "2020-03-02", Parameter: 7, ValueA: 2, ValueB: 2.5}, diff.ChangedValues[0])
	assert.Equal(t, 3, diff.CountA)
	assert.Equal(t, 4, diff.CountB)
	assert.Equal(t, "2020-03-02", diff.LastDateA)
	assert.Equal(t, "2020-03-03", diff.LastDateB)

	summary := diff.Summary()
	assert.Contains(t, summary, "old.csv")
	assert.Contains(t, summary, "1 entities added")
	assert.Contains(t, summary, "A 2020-03-02 (7 days): 2.00 -> 2.50")
}

func TestCompareDatasetsFromNil(t *testing.T) {
	b := testutil.Flat(7, map[string][]float64{"A": {1}})
	diff := CompareDatasets(nil, b, DefaultDiffOptions())
	assert.True(t, diff.HasChanges())
	assert.Equal(t, []string{"A"}, diff.AddedEntities)
}

func TestCompareDatasetsMaxDifferences(t *testing.T) {
	a := testutil.Flat(7, map[string][]float64{"A": {1, 1, 1, 1}})
	b := testutil.Flat(7, map[string][]float64{"A": {2, 2, 2, 2}})
	diff := CompareDatasets(a, b, DiffOptions{MaxDifferences: 2})
	assert.Len(t, diff.ChangedValues, 2)
}
