// Package registration holds satellite images together with the metadata
// needed to reproject and stitch them.
//
// A Registration owns one decoded image and its satellite definition. Before
// reprojection it is normalised:
//
//  1. border crop, from the definition's {top, right, bottom, left} ratios
//  2. resize to the full-disc size of the configured resolution
//  3. invert, for satellites whose IR imagery is dark for cold cloud
//  4. brightness multiplier
//  5. mask everything outside the Earth's disc to transparent
//
// An Activity groups the registrations of one render. Its overlap pass trims
// each registration's longitude range at the midpoint of any overlap with a
// neighbour, so that feathered edges meet evenly.
package registration
