package planar

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// GraphvizEmbedder places nodes with Graphviz. The default engine is neato,
// a spring model: it tends to untangle planar graphs of curriculum size but
// does not compute a planar embedding, so crossings remain possible.
type GraphvizEmbedder struct {
	Layout graphviz.Layout // Engine (empty means neato)
}

// Embed implements [Embedder].
func (e *GraphvizEmbedder) Embed(ctx context.Context, g *Graph) (map[string]Point, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	engine := e.Layout
	if engine == "" {
		engine = graphviz.NEATO
	}
	gv.SetLayout(engine)

	parsed, err := graphviz.ParseBytes([]byte(toDOT(g)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return parsePlain(buf.Bytes())
}

func toDOT(g *Graph) string {
	var buf strings.Builder
	buf.WriteString("graph G {\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=point];\n")
	for _, id := range g.nodes {
		fmt.Fprintf(&buf, "  %q;\n", id)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e[0], e[1])
	}
	buf.WriteString("}\n")
	return buf.String()
}

// parsePlain reads node coordinates from Graphviz "plain" output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 ... label xl yl style color
//	stop
func parsePlain(out []byte) (map[string]Point, error) {
	pos := make(map[string]Point)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields, err := splitPlain(sc.Text())
		if err != nil {
			return nil, err
		}
		if len(fields) < 4 || fields[0] != "node" {
			continue
		}
		x, errX := strconv.ParseFloat(fields[2], 64)
		y, errY := strconv.ParseFloat(fields[3], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("bad node line %q", sc.Text())
		}
		pos[fields[1]] = Point{X: x, Y: y}
	}
	return pos, sc.Err()
}

// splitPlain splits a plain-format line on spaces, honoring double-quoted
// names with backslash escapes.
func splitPlain(line string) ([]string, error) {
	var fields []string
	for line = strings.TrimSpace(line); line != ""; line = strings.TrimSpace(line) {
		if line[0] != '"' {
			end := strings.IndexByte(line, ' ')
			if end < 0 {
				end = len(line)
			}
			fields = append(fields, line[:end])
			line = line[end:]
			continue
		}
		quoted, err := strconv.QuotedPrefix(line)
		if err != nil {
			return nil, fmt.Errorf("bad quoted field in %q: %w", line, err)
		}
		unq, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, err
		}
		fields = append(fields, unq)
		line = line[len(quoted):]
	}
	return fields, nil
}
