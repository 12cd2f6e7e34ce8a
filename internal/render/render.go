// Package render draws scored segments and the safest route as SVG or PNG maps.
package render

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"slices"

	"github.com/paulmach/orb"
	"github.com/safepath/safepath/core/algo"
	"github.com/safepath/safepath/internal/geoexport"
	"github.com/safepath/safepath/schema"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// zigZagOffset shifts each route midpoint east so overlapping legs stay visible.
const zigZagOffset = 0.0005

var (
	routeColor  = color.RGBA{R: 30, G: 90, B: 220, A: 255}
	unsafeColor = color.RGBA{R: 210, G: 30, B: 30, A: 255}
	infoColor   = color.RGBA{R: 30, G: 160, B: 60, A: 255}
)

// Layers holds the geometry of a map, in (lon, lat) order.
type Layers struct {
	Route         orb.LineString // zig-zag polyline
	RouteMarkers  []orb.Point
	UnsafeMarkers []orb.Point // off-route segments below the route's lowest score
	Info          orb.Point
	HasInfo       bool
}

// Bound returns the bounding box of every drawn point.
func (l Layers) Bound() orb.Bound {
	return orb.MultiPoint(slices.Concat(l.RouteMarkers, l.UnsafeMarkers, []orb.Point(l.Route))).Bound()
}

// BuildLayers selects what gets drawn. Segments that are neither on the route
// nor less safe than its weakest segment are left out.
func BuildLayers(segments []schema.ScoredSegment, report schema.RouteReport) Layers {
	var l Layers

	route := geoexport.RouteLineString(report.Route)
	l.RouteMarkers = []orb.Point(route)
	if len(report.Route) > 0 {
		for _, s := range algo.UnsafeOffRoute(segments, report.Path.IDs, report.MinRouteScore) {
			l.UnsafeMarkers = append(l.UnsafeMarkers, geoexport.Point(s.Segment))
		}
	}

	if len(route) > 1 {
		l.Route = zigZag(route)
	}
	if len(route) > 0 {
		l.Info = route[len(route)/2]
		l.HasInfo = true
	}
	return l
}

// zigZag inserts an offset midpoint between every pair of consecutive points.
func zigZag(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, 2*len(ls)-1)
	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		mid := orb.Point{(a[0]+b[0])/2 + zigZagOffset, (a[1] + b[1]) / 2}
		out = append(out, a, mid)
	}
	return append(out, ls[len(ls)-1])
}

// MapRenderer renders Layers onto a canvas of fixed size.
type MapRenderer struct {
	Width      float64 // canvas units (mm)
	Height     float64
	Padding    float64
	MarkerSize float64
	LineWidth  float64
	Resolution canvas.Resolution // PNG only
}

// NewMapRenderer creates a renderer of the given size. PNG output has one pixel per unit.
func NewMapRenderer(width, height int) *MapRenderer {
	return &MapRenderer{
		Width:      float64(width),
		Height:     float64(height),
		Padding:    40,
		MarkerSize: 6,
		LineWidth:  4,
		Resolution: canvas.DPI(25.4),
	}
}

// canvasRenderer is implemented by both the svg and rasterizer renderers.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the map as an SVG to w.
func (r *MapRenderer) RenderToSVG(w io.Writer, layers Layers) error {
	if err := r.validate(); err != nil {
		return err
	}
	svgRenderer := svg.New(w, r.Width, r.Height, nil)
	r.draw(svgRenderer, layers)
	return svgRenderer.Close()
}

// RenderToPNG writes the map as a PNG to w.
func (r *MapRenderer) RenderToPNG(w io.Writer, layers Layers) error {
	if err := r.validate(); err != nil {
		return err
	}
	rast := rasterizer.New(r.Width, r.Height, r.Resolution, canvas.DefaultColorSpace)
	r.draw(rast, layers)
	return png.Encode(w, rast)
}

func (r *MapRenderer) validate() error {
	if r.Width <= 2*r.Padding || r.Height <= 2*r.Padding {
		return fmt.Errorf("map size %.0fx%.0f is too small for padding %.0f", r.Width, r.Height, r.Padding)
	}
	return nil
}

// projector maps (lon, lat) into the padded canvas, keeping the aspect ratio.
type projector struct {
	bound   orb.Bound
	scale   float64
	offsetX float64
	offsetY float64
}

func (r *MapRenderer) newProjector(bound orb.Bound) projector {
	spanX := bound.Max[0] - bound.Min[0]
	spanY := bound.Max[1] - bound.Min[1]
	innerW := r.Width - 2*r.Padding
	innerH := r.Height - 2*r.Padding

	scale := 1.0
	switch {
	case spanX > 0 && spanY > 0:
		scale = min(innerW/spanX, innerH/spanY)
	case spanX > 0:
		scale = innerW / spanX
	case spanY > 0:
		scale = innerH / spanY
	}

	return projector{
		bound:   bound,
		scale:   scale,
		offsetX: r.Padding + (innerW-spanX*scale)/2,
		offsetY: r.Padding + (innerH-spanY*scale)/2,
	}
}

func (p projector) project(pt orb.Point) (float64, float64) {
	return p.offsetX + (pt[0]-p.bound.Min[0])*p.scale, p.offsetY + (pt[1]-p.bound.Min[1])*p.scale
}

func (r *MapRenderer) draw(renderer canvasRenderer, layers Layers) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(r.Width, r.Height), bgStyle, canvas.Identity)

	proj := r.newProjector(layers.Bound())

	if len(layers.Route) > 1 {
		lineStyle := canvas.DefaultStyle
		lineStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		lineStyle.Stroke = canvas.Paint{Color: routeColor}
		lineStyle.StrokeWidth = r.LineWidth

		path := &canvas.Path{}
		for i, pt := range layers.Route {
			x, y := proj.project(pt)
			if i == 0 {
				path.MoveTo(x, y)
			} else {
				path.LineTo(x, y)
			}
		}
		renderer.RenderPath(path, lineStyle, canvas.Identity)
	}

	r.drawMarkers(renderer, proj, layers.UnsafeMarkers, unsafeColor)
	r.drawMarkers(renderer, proj, layers.RouteMarkers, routeColor)

	if layers.HasInfo {
		infoStyle := canvas.DefaultStyle
		infoStyle.Fill = canvas.Paint{Color: infoColor}
		infoStyle.Stroke = canvas.Paint{Color: canvas.Black}
		infoStyle.StrokeWidth = 1

		x, y := proj.project(layers.Info)
		size := 2 * r.MarkerSize
		marker := canvas.Rectangle(size, size).Translate(x-size/2, y-size/2)
		renderer.RenderPath(marker, infoStyle, canvas.Identity)
	}
}

func (r *MapRenderer) drawMarkers(renderer canvasRenderer, proj projector, points []orb.Point, fill color.RGBA) {
	style := canvas.DefaultStyle
	style.Fill = canvas.Paint{Color: fill}
	style.Stroke = canvas.Paint{Color: canvas.Black}
	style.StrokeWidth = 1

	for _, pt := range points {
		x, y := proj.project(pt)
		renderer.RenderPath(canvas.Circle(r.MarkerSize).Translate(x, y), style, canvas.Identity)
	}
}
