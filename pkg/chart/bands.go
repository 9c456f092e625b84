package chart

import (
	"fmt"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// BandWidth is the stroke width of credible-interval edges.
const BandWidth = 0.5

// BuildBands returns the credible-interval layers for one entity. Each
// requested tier contributes its upper edge followed by its lower edge; the
// lower edge fills back to the upper one, so the pair must stay adjacent.
func BuildBands(s model.Series, bounds model.Bounds, sw Swatch) []model.Layer {
	if s.Empty() {
		return nil
	}
	order := bounds.DrawOrder()
	if len(order) == 0 {
		return nil
	}

	layers := make([]model.Layer, 0, 2*len(order))
	dates := s.Dates()
	for _, tier := range order {
		band := sw.Band(tier)
		for _, b := range []model.Bound{model.BoundUpper, model.BoundLower} {
			layers = append(layers, model.Layer{
				Name:           fmt.Sprintf("%s %s %s", s.EntityID, tier, b),
				X:              dates,
				Y:              s.Column(tier, b),
				Mode:           model.ModeLines,
				Color:          band,
				Width:          BandWidth,
				Dash:           model.DashSolid,
				FillToPrevious: b == model.BoundLower,
				FillColor:      fillFor(b, band),
				HoverTemplate:  bandHover(s.EntityID, tier, b),
				Hoverable:      true,
				Opacity:        1,
			})
		}
	}
	return layers
}

func fillFor(b model.Bound, band string) string {
	if b == model.BoundLower {
		return band
	}
	return ""
}

func bandHover(entity string, t model.Tier, b model.Bound) string {
	return fmt.Sprintf("<b>%s: %%{y:.2f}</b><br>%s Bound, %s Credible Interval<br>%%{x|%%d %%b %%y}<extra></extra>",
		entity, b, t)
}
