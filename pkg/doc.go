// Package pkg holds the libraries behind Gradebuilder, a layout engine for
// curriculum graphs.
//
// # Overview
//
// A curriculum is a directed graph: courses are nodes, prerequisites are
// edges, and most courses carry the period (semester) they are planned in.
// Gradebuilder places every course with a period into a column for that
// period and orders each column so that prerequisite edges cross as little
// as possible. Graphs that are not acyclic, or have no periods at all, can
// still be laid out freely through the planar path.
//
// # Architecture
//
// The data flow for a layout request:
//
//	JSON payload (nodes, edges)
//	         ↓
//	    [graph] (decode, validate references)
//	         ↓
//	    [dag] (graph structure, crossing counts)
//	         ↓
//	    [layered] or [planar] (positions)
//	         ↓
//	    [graph] Layout → JSON, or [render] → DOT/SVG/PDF/PNG
//
// [pipeline] ties these steps together with caching, and is shared by the
// CLI and the HTTP server.
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("curriculum.json")
//	d, _ := graph.ToDAG(g)
//
//	res, err := layered.Compute(d, layered.DefaultOptions())
//	if err != nil {
//	    // errors.GetCode(err) is CYCLE, UNKNOWN_REFERENCE or INVALID_COLUMN
//	}
//	fmt.Println(res.InitialCrossings, "→", res.Crossings)
//
// # Main Packages
//
// ## Layout
//
// [dag] - Directed graph with per-node metadata, plus edge crossing counts
// between adjacent columns.
//
// [dag/transform] - Cycle detection and transitive reduction.
//
// [layered] - Period columns, barycenter crossing reduction and coordinate
// assignment.
//
// [planar] - Unconstrained layout for arbitrary graphs: a planarity test,
// Graphviz embedding for planar graphs, force-directed placement otherwise.
//
// [curriculum] - Credit loads per period, move validation and plan reports.
//
// ## Serialization and Output
//
// [graph] - Wire types for graphs and layouts.
//
// [render] - DOT and SVG output, with PDF and PNG conversion.
//
// ## Infrastructure
//
// [pipeline] - Layout, report and render with caching and hooks.
//
// [cache] - Null, file and Redis caches plus key derivation.
//
// [storage] - Users and saved graphs, in memory or MongoDB.
//
// [session] - Login sessions in memory, on disk or in Redis.
//
// [auth] - Registration, password login and bearer tokens.
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Hooks for layout, cache and HTTP events.
//
// [errors] - Coded errors shared by every entry point.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/layered   # Examples only
//	go test -tags integration ./pkg/...  # Include MongoDB tests
package pkg
