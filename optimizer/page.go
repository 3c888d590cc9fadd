package optimizer

import (
	"context"

	"github.com/jonwraymond/assetops/asset"
)

// Position is where on a page a script group is rendered.
type Position int

const (
	// PosHead renders in the document head.
	PosHead Position = iota
	// PosBegin renders at the start of the body.
	PosBegin
	// PosEnd renders at the end of the body.
	PosEnd
	// PosReady runs when the document is ready.
	PosReady
	// PosLoad runs when the window has loaded.
	PosLoad
)

// Positions lists every position in render order.
var Positions = []Position{PosHead, PosBegin, PosEnd, PosReady, PosLoad}

func (p Position) String() string {
	switch p {
	case PosHead:
		return "head"
	case PosBegin:
		return "begin"
	case PosEnd:
		return "end"
	case PosReady:
		return "ready"
	case PosLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Page is the set of asset groups registered while rendering one page.
type Page struct {
	Styles  asset.Group
	Scripts map[Position]asset.Group
}

// Output is the optimized replacement for a Page.
type Output struct {
	Styles  []asset.Entry
	Scripts map[Position][]asset.Entry
}

// Passthrough returns p converted to output without optimization.
func (p *Page) Passthrough() Output {
	out := Output{Styles: p.Styles.Entries(), Scripts: make(map[Position][]asset.Entry, len(p.Scripts))}
	for pos, g := range p.Scripts {
		out.Scripts[pos] = g.Entries()
	}
	return out
}

// Optimize optimizes every group of page: one style group and one script
// group per position. Groups under positions outside Positions are
// optimized too, after the known ones. When the engine is disabled the page is returned as
// given. With StylesToBottom the style entries move in front of the PosEnd
// scripts and Output.Styles is left empty.
func (e *Engine) Optimize(ctx context.Context, page *Page) Output {
	if page == nil {
		return Output{Scripts: map[Position][]asset.Entry{}}
	}
	if !e.cfg.Enabled {
		return page.Passthrough()
	}

	out := Output{
		Styles:  e.optimizeGroup(ctx, asset.KindStyle, "", page.Styles),
		Scripts: make(map[Position][]asset.Entry, len(page.Scripts)),
	}
	for _, pos := range Positions {
		g, ok := page.Scripts[pos]
		if !ok {
			continue
		}
		out.Scripts[pos] = e.optimizeGroup(ctx, asset.KindScript, pos.String(), g)
	}
	for pos, g := range page.Scripts {
		if _, done := out.Scripts[pos]; done {
			continue
		}
		out.Scripts[pos] = e.optimizeGroup(ctx, asset.KindScript, pos.String(), g)
	}

	if e.cfg.StylesToBottom && len(out.Styles) > 0 {
		end := make([]asset.Entry, 0, len(out.Styles)+len(out.Scripts[PosEnd]))
		end = append(end, out.Styles...)
		end = append(end, out.Scripts[PosEnd]...)
		out.Scripts[PosEnd] = end
		out.Styles = []asset.Entry{}
	}
	return out
}
