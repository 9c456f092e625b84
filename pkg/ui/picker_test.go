package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/model"
	"github.com/vanderheijden86/trackr/pkg/testutil"
)

func TestPickerDefaultsFromCatalog(t *testing.T) {
	cat := datasource.BuildCatalog(testutil.NewDefault().Dataset())
	p := NewPicker(cat, chart.Request{Bounds: model.BoundsBoth})

	req, err := p.Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"World"}, req.Selection)
	assert.Equal(t, 7, req.Parameter)
	assert.Equal(t, model.BoundsBoth, req.Bounds)
}

func TestPickerKeepsInitialSelection(t *testing.T) {
	cat := datasource.BuildCatalog(testutil.NewDefault().Dataset())
	p := NewPicker(cat, chart.Request{Selection: []string{"Spain", "Italy"}, Parameter: 9, Bounds: model.Bounds65})

	req, err := p.Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"Spain", "Italy"}, req.Selection)
	assert.Equal(t, 9, req.Parameter)
	assert.Equal(t, model.Bounds65, req.Bounds)
}

func TestPickerReplacesUnknownDays(t *testing.T) {
	cat := datasource.BuildCatalog(testutil.NewDefault().Dataset())
	p := NewPicker(cat, chart.Request{Parameter: 42})
	req, err := p.Request()
	require.NoError(t, err)
	assert.Equal(t, cat.DefaultParameter, req.Parameter)
	assert.Equal(t, model.BoundsNone, req.Bounds)
}

func TestPickerFormBuilds(t *testing.T) {
	cat := datasource.BuildCatalog(testutil.NewDefault().Dataset())
	var out bytes.Buffer
	p := NewPicker(cat, chart.Request{}).WithIO(strings.NewReader(""), &out)
	assert.NotNil(t, p.Form())
}

func TestPickerEmptyCatalog(t *testing.T) {
	p := NewPicker(datasource.BuildCatalog(nil), chart.Request{})
	_, err := p.Run()
	assert.True(t, errors.Is(err, ErrNoEntities))
}
