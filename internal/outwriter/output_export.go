package outwriter

import (
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"
	"github.com/safepath/safepath/internal/geoexport"
	"github.com/safepath/safepath/internal/render"
	"github.com/safepath/safepath/schema"
)

// MapOptions controls map rendering.
type MapOptions struct {
	Format schema.MapFormat
	Width  int
	Height int
}

// WriteGeoJSONCollection writes a feature collection to outputFile, or stdout when empty.
func WriteGeoJSONCollection(fc *geojson.FeatureCollection, outputFile string) error {
	return writeWithFile(outputFile, func(w io.Writer) error {
		return geoexport.WriteGeoJSON(w, fc)
	}, "Wrote GeoJSON")
}

// WriteMap renders the layers as SVG or PNG. PNG output needs a file.
func WriteMap(layers render.Layers, opts MapOptions, outputFile string) error {
	r := render.NewMapRenderer(opts.Width, opts.Height)

	switch opts.Format {
	case schema.PNGMap:
		if outputFile == "" {
			return fmt.Errorf("--output-file is required for png maps")
		}
		return writeWithFile(outputFile, func(w io.Writer) error {
			return r.RenderToPNG(w, layers)
		}, "Wrote PNG map")
	case schema.SVGMap, "":
		return writeWithFile(outputFile, func(w io.Writer) error {
			return r.RenderToSVG(w, layers)
		}, "Wrote SVG map")
	default:
		return fmt.Errorf("unsupported map format: %s. Must be svg or png", opts.Format)
	}
}
