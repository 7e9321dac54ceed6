package artifact

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/civicdata/incident-pipeline/internal/domain"
)

// mapTemplate renders a self-contained Leaflet page with one marker per
// point, centered on the mean coordinate.
var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Mappa incidenti</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
    attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
{{- range .Markers}}
L.marker([{{.Lat}}, {{.Lon}}]).addTo(map).bindPopup('Incidente {{.Index}}');
{{- end}}
</script>
</body>
</html>
`))

type mapData struct {
	CenterLat template.JS
	CenterLon template.JS
	Zoom      int
	Markers   []marker
}

type marker struct {
	Lat   template.JS
	Lon   template.JS
	Index int
}

// jsCoord renders a coordinate at fixed precision so the script does not
// pick up float repr artifacts like 41.800000000000004.
func jsCoord(v float64) template.JS {
	return template.JS(fmt.Sprintf("%.6f", v))
}

// SaveMap renders the incident map into the output directory and returns
// the file path. At least one point is required; callers skip the map when
// a dataset has no usable coordinates.
func (s *Store) SaveMap(name string, points []domain.GeoPoint, zoom int) (string, error) {
	if len(points) == 0 {
		return "", errors.New("save map: no points")
	}

	var sumLat, sumLon float64
	markers := make([]marker, len(points))
	for i, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
		markers[i] = marker{Lat: jsCoord(p.Lat), Lon: jsCoord(p.Lon), Index: i}
	}
	data := mapData{
		CenterLat: jsCoord(sumLat / float64(len(points))),
		CenterLon: jsCoord(sumLon / float64(len(points))),
		Zoom:      zoom,
		Markers:   markers,
	}

	path := filepath.Join(s.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if err := mapTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("render map: %w", err)
	}
	s.logger.Info("map saved", "path", path, "markers", len(points))
	return path, nil
}
