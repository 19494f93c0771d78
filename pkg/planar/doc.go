// Package planar lays out graphs that have no column assignments.
//
// [Unconstrained] first decides planarity with [LRTester]. Planar graphs are
// embedded with Graphviz ([GraphvizEmbedder]); the rest go through a
// force-directed spring model ([ForceEmbedder], backed by gonum). Both
// embedders sit behind the [Embedder] interface so they can be replaced in
// tests or by callers with other needs.
//
// Raw coordinates are centered and scaled into [-Scale, Scale] by [Rescale].
// The planarity verdict is reported with the positions; the layered layout
// also reports it as an informational flag. The verdict describes the graph:
// neither embedder guarantees a crossing-free drawing.
package planar
