// Package canvas implements the placement model: the live set of elements on
// the canvas surface and the geometry used to target them.
//
// Bounding boxes are derived from an element's rendered label (glyph, space,
// symbol), centered on the placement point and padded by a fixed margin.
// Boxes are computed fresh on every query from the current Metrics; nothing
// caches geometry, so a glyph change after a cache update is reflected on the
// next hit test.
//
// Edges are inclusive: boxes that touch overlap, and a point on an edge hits.
package canvas
