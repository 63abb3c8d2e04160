package drawing

import (
	"math"
	"testing"

	"github.com/rustyeddy/chartkit/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRoundTrip(t *testing.T) {
	h := NewHorizontalLine(1.2345)
	h.Style = Style{Color: "#ff0000", Width: 2}

	tl := NewTrendline(Point{Time: 1700000000, Price: 1.1}, Point{Time: 1700003600, Price: 1.2})
	tl.ExtendRight = true

	fib := NewFibonacci(Point{Time: 1700000000, Price: 1.0}, Point{Time: 1700086400, Price: 1.5})
	fib.ExtensionLevels[1].Enabled = true

	in := []Drawing{h, tl, fib}
	data, err := Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"horizontal_line"`)
	assert.Contains(t, string(data), `"extendRight":true`)

	out, dropped, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, in, out)
}

func TestUnmarshalDropsInvalidEntries(t *testing.T) {
	doc := `[
		{"id": "a", "type": "horizontal_line", "price": 1.5},
		{"id": "b", "type": "horizontal_line"},
		{"id": "c", "type": "trendline", "point1": {"time": 1700000000, "price": 1}},
		{"id": "d", "type": "fibonacci", "startPoint": {"time": 1700000000, "price": 1}},
		{"id": "e", "type": "circle", "price": 2},
		{"id": "f", "type": "trendline", "point1": {"time": "garbage", "price": 1}, "point2": {"time": 1700000000, "price": 2}},
		"oops",
		{"type": "trendline", "point1": {"time": "2024-01-02T00:00:00Z", "price": 1}, "point2": {"time": 1704240000000, "price": 2}}
	]`

	out, dropped, err := Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 6, dropped)
	require.Len(t, out, 2)

	assert.Equal(t, "a", out[0].DrawingID())
	assert.Equal(t, KindHorizontalLine, out[0].Kind())

	tl, ok := out[1].(Trendline)
	require.True(t, ok)
	assert.True(t, id.Valid(tl.ID))
	assert.Equal(t, int64(1704153600), tl.Point1.Time)
	// milliseconds scaled to seconds
	assert.Equal(t, int64(1704240000), tl.Point2.Time)
}

func TestUnmarshalFibDefaults(t *testing.T) {
	doc := `[{"type": "fib", "startPoint": {"time": 1700000000, "price": 1}, "endPoint": {"time": 1700003600, "price": 2}}]`

	out, dropped, err := Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, out, 1)

	f := out[0].(FibonacciRetracement)
	assert.Equal(t, DefaultRetracementLevels(), f.Levels)
	assert.Equal(t, DefaultExtensionLevels(), f.ExtensionLevels)
	assert.Len(t, f.Prices(), 7)
}

func TestUnmarshalNotAnArray(t *testing.T) {
	_, _, err := Unmarshal([]byte(`{"type": "trendline"}`))
	assert.Error(t, err)

	out, dropped, err := Unmarshal([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, dropped)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewHorizontalLine(1).Validate())
	assert.ErrorIs(t, Trendline{Point1: Point{Time: 1, Price: 1}}.Validate(), ErrInvalidDrawing)
	assert.NoError(t, FibonacciRetracement{
		StartPoint: Point{Time: 1, Price: 1},
		EndPoint:   Point{Time: 2, Price: 2},
		Levels:     []FibLevel{{Value: 2, Label: "x"}},
	}.Validate())
	assert.ErrorIs(t, HorizontalLine{Price: math.NaN()}.Validate(), ErrInvalidDrawing)
}
