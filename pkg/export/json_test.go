package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/model"
	"github.com/vanderheijden86/trackr/pkg/testutil"
)

func TestMarshalSpecMissingValuesBecomeNull(t *testing.T) {
	ds := testutil.Flat(7, map[string][]float64{"A": {1, math.NaN(), 2}})
	spec := chart.Assemble(ds, []string{"A"}, 7, model.BoundsNone)

	data, err := MarshalSpec(spec)
	require.NoError(t, err)

	var decoded struct {
		Layers []struct {
			Name string     `json:"name"`
			X    []string   `json:"x"`
			Y    []*float64 `json:"y"`
		} `json:"layers"`
		Annotations []struct {
			EntityID string `json:"entity_id"`
			Text     string `json:"text"`
		} `json:"annotations"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Layers, 3)

	main := decoded.Layers[2]
	assert.Equal(t, "A", main.Name)
	assert.Equal(t, []string{"2020-03-01", "2020-03-02", "2020-03-03"}, main.X)
	require.Len(t, main.Y, 3)
	assert.Nil(t, main.Y[1])
	assert.Equal(t, 2.0, *main.Y[2])

	require.Len(t, decoded.Annotations, 1)
	assert.Equal(t, "A", decoded.Annotations[0].EntityID)
	assert.Equal(t, "2.00", decoded.Annotations[0].Text)
}

func TestWriteJSONPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, chart.Placeholder()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n"), "output should be indented")
	assert.Contains(t, out, chart.PlaceholderText)
	assert.Contains(t, out, `"axes_visible": false`)
}

func TestWriteJSONNotice(t *testing.T) {
	ds := testutil.Flat(7, map[string][]float64{"A": {1}})
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, chart.Assemble(ds, []string{"A"}, 99, model.BoundsBoth)))
	assert.Contains(t, buf.String(), chart.NoticeNoData)
}
