// Package render draws budget chart data as images.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/resilience"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("render")

// palette maps chart color keys to fills.
var palette = map[string]drawing.Color{
	"debts":    drawing.ColorFromHex("ef4444"),
	"expenses": drawing.ColorFromHex("f59e0b"),
	"fun":      drawing.ColorFromHex("8b5cf6"),
	"savings":  drawing.ColorFromHex("10b981"),
}

// PieRenderer renders chart data as a PNG pie chart. Concurrent renders
// are capped by a bulkhead since rasterizing is CPU bound.
type PieRenderer struct {
	width    int
	height   int
	bulkhead *resilience.Bulkhead
}

// NewPieRenderer creates a renderer producing width×height images.
func NewPieRenderer(width, height, maxConcurrency int) *PieRenderer {
	return &PieRenderer{
		width:    width,
		height:   height,
		bulkhead: resilience.NewBulkhead(maxConcurrency),
	}
}

// RenderPNG draws chart. It returns nil, nil for an empty chart.
func (r *PieRenderer) RenderPNG(ctx context.Context, data domain.ChartData) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "PieRenderer.RenderPNG")
	defer span.End()
	span.SetAttributes(attribute.Int("chart.slices", len(data.Slices)))

	if data.Empty || len(data.Slices) == 0 {
		return nil, nil
	}

	if err := r.bulkhead.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("render slot: %w", err)
	}
	defer r.bulkhead.Release()

	values := make([]chart.Value, 0, len(data.Slices))
	for _, s := range data.Slices {
		style := chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}
		if c, ok := palette[s.Color]; ok {
			style.FillColor = c
			style.StrokeColor = chart.ColorWhite
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s", s.Name, domain.FormatPercent(s.Percent)),
			Value: s.Value.InexactFloat64(),
			Style: style,
		})
	}

	pie := chart.PieChart{
		Width:  r.width,
		Height: r.height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   40,
				Right:  40,
				Bottom: 40,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render budget pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}
