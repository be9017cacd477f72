// Package projection converts between geodetic coordinates and the scanning
// angles of a geostationary imager, following the fixed-grid equations of the
// GOES-R Product User Guide on the GRS80 ellipsoid.
//
// Both directions return explicit value types rather than NaN sentinels:
//
//	angle := orbit.Forward(latitude, longitude)
//	if !angle.Visible() {
//	    // the point is on the far side of the Earth
//	}
//
// The work that depends only on one image row is split out into LatitudeTerms
// (forward) and VerticalScanTerms (reverse) so that row-parallel callers can
// compute it once per row and reuse it for every column.
package projection
