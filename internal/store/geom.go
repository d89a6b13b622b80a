package store

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// SRID of OSM coordinates.
const SRID = 4326

// pointEWKB encodes a lon/lat pair as an EWKB point. Records without both
// coordinates encode to nil.
func pointEWKB(rec Record) ([]byte, error) {
	if !rec.HasPoint() {
		return nil, nil
	}

	p := geom.NewPointFlat(geom.XY, []float64{*rec.Lon, *rec.Lat}).SetSRID(SRID)
	data, err := ewkb.Marshal(p, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrapf(err, "store: encode point for %s", rec.OSMID)
	}
	return data, nil
}
