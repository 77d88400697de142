// Package segment separates a dental impression mesh into gingiva and
// individual teeth.
//
// The stages run in order on one shared mesh:
//
//	DetectBoundary     curvature threshold plus morphological cleanup
//	CutGingiva         plane fit through the boundary, gum-side noise removed
//	ClassifyRegions    flood fill into gingiva and tooth regions
//	ExtractSkeleton    thin the boundary band to single-vertex curves
//	FindCuttingPoints  mark junctions between boundary arcs
//	IndexContours      walk the arcs between junctions
//	RefineContours     spline snap, re-skeletonize and smooth
//
// Each stage mutates the attributes of the same mesh.Mesh; Pipeline runs
// them in sequence and can snapshot the result of every stage.
package segment
