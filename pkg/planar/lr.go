package planar

import (
	"cmp"
	"slices"
)

// LRTester decides planarity with the left-right criterion of de Fraysseix
// and Rosenstiehl, as refined by Brandes. It runs in linear time and does not
// build an embedding.
type LRTester struct{}

// TestPlanarity implements [Tester].
func (LRTester) TestPlanarity(g *Graph) bool {
	n, m := g.Order(), g.Size()
	if n > 2 && m > 3*n-6 {
		return false
	}
	s := newLRState(g)
	for v := range n {
		if s.height[v] < 0 {
			s.height[v] = 0
			s.roots = append(s.roots, v)
			s.orient(v)
		}
	}
	for v := range n {
		slices.SortStableFunc(s.out[v], func(a, b int) int {
			return cmp.Compare(s.nesting[lrEdge{v, a}], s.nesting[lrEdge{v, b}])
		})
	}
	for _, r := range s.roots {
		if !s.test(r) {
			return false
		}
	}
	return true
}

type lrEdge struct{ from, to int }

var noEdge = lrEdge{-1, -1}

type interval struct{ low, high lrEdge }

func emptyInterval() interval { return interval{noEdge, noEdge} }

func (i interval) empty() bool { return i.low == noEdge && i.high == noEdge }

type conflictPair struct{ left, right interval }

func (p *conflictPair) swap() { p.left, p.right = p.right, p.left }

type lrState struct {
	g        *Graph
	roots    []int
	height   []int
	parent   []lrEdge
	out      [][]int // oriented adjacency, sorted by nesting depth before testing
	oriented map[lrEdge]bool
	lowpt    map[lrEdge]int
	lowpt2   map[lrEdge]int
	nesting  map[lrEdge]int

	stack       []*conflictPair
	stackBottom map[lrEdge]*conflictPair
	lowptEdge   map[lrEdge]lrEdge
	ref         map[lrEdge]lrEdge
}

func newLRState(g *Graph) *lrState {
	n := g.Order()
	s := &lrState{
		g:           g,
		height:      make([]int, n),
		parent:      make([]lrEdge, n),
		out:         make([][]int, n),
		oriented:    make(map[lrEdge]bool),
		lowpt:       make(map[lrEdge]int),
		lowpt2:      make(map[lrEdge]int),
		nesting:     make(map[lrEdge]int),
		stackBottom: make(map[lrEdge]*conflictPair),
		lowptEdge:   make(map[lrEdge]lrEdge),
		ref:         make(map[lrEdge]lrEdge),
	}
	for v := range n {
		s.height[v] = -1
		s.parent[v] = noEdge
	}
	return s
}

func (s *lrState) refOf(e lrEdge) lrEdge {
	if r, ok := s.ref[e]; ok {
		return r
	}
	return noEdge
}

func (s *lrState) conflicting(i interval, b lrEdge) bool {
	return !i.empty() && s.lowpt[i.high] > s.lowpt[b]
}

func (s *lrState) lowest(p *conflictPair) int {
	switch {
	case p.left.empty():
		return s.lowpt[p.right.low]
	case p.right.empty():
		return s.lowpt[p.left.low]
	}
	return min(s.lowpt[p.left.low], s.lowpt[p.right.low])
}

func (s *lrState) top() *conflictPair {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *lrState) pop() *conflictPair {
	p := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return p
}

// orient directs every edge away from the DFS root and computes lowpoints
// and nesting depths.
func (s *lrState) orient(v int) {
	e := s.parent[v]
	for _, w := range s.g.adj[v] {
		if s.oriented[lrEdge{v, w}] || s.oriented[lrEdge{w, v}] {
			continue
		}
		vw := lrEdge{v, w}
		s.oriented[vw] = true
		s.out[v] = append(s.out[v], w)
		s.lowpt[vw] = s.height[v]
		s.lowpt2[vw] = s.height[v]
		if s.height[w] < 0 {
			s.parent[w] = vw
			s.height[w] = s.height[v] + 1
			s.orient(w)
		} else {
			s.lowpt[vw] = s.height[w]
		}

		s.nesting[vw] = 2 * s.lowpt[vw]
		if s.lowpt2[vw] < s.height[v] {
			s.nesting[vw]++
		}

		if e == noEdge {
			continue
		}
		switch {
		case s.lowpt[vw] < s.lowpt[e]:
			s.lowpt2[e] = min(s.lowpt[e], s.lowpt2[vw])
			s.lowpt[e] = s.lowpt[vw]
		case s.lowpt[vw] > s.lowpt[e]:
			s.lowpt2[e] = min(s.lowpt2[e], s.lowpt[vw])
		default:
			s.lowpt2[e] = min(s.lowpt2[e], s.lowpt2[vw])
		}
	}
}

func (s *lrState) test(v int) bool {
	e := s.parent[v]
	for i, w := range s.out[v] {
		ei := lrEdge{v, w}
		s.stackBottom[ei] = s.top()
		if ei == s.parent[w] {
			if !s.test(w) {
				return false
			}
		} else {
			s.lowptEdge[ei] = ei
			s.stack = append(s.stack, &conflictPair{left: emptyInterval(), right: interval{ei, ei}})
		}

		if s.lowpt[ei] < s.height[v] {
			if i == 0 {
				s.lowptEdge[e] = s.lowptEdge[ei]
			} else if !s.addConstraints(ei, e) {
				return false
			}
		}
	}
	if e != noEdge {
		s.removeBackEdges(e)
	}
	return true
}

func (s *lrState) addConstraints(ei, e lrEdge) bool {
	p := &conflictPair{left: emptyInterval(), right: emptyInterval()}

	// merge return edges of ei into p.right
	for {
		q := s.pop()
		if !q.left.empty() {
			q.swap()
		}
		if !q.left.empty() {
			return false
		}
		if s.lowpt[q.right.low] > s.lowpt[e] {
			if p.right.empty() {
				p.right = q.right
			} else {
				s.ref[p.right.low] = q.right.high
			}
			p.right.low = q.right.low
		} else {
			s.ref[q.right.low] = s.lowptEdge[e]
		}
		if len(s.stack) == 0 || s.top() == s.stackBottom[ei] {
			break
		}
	}

	// merge conflicting return edges of earlier siblings into p.left
	for len(s.stack) > 0 && (s.conflicting(s.top().left, ei) || s.conflicting(s.top().right, ei)) {
		q := s.pop()
		if s.conflicting(q.right, ei) {
			q.swap()
		}
		if s.conflicting(q.right, ei) {
			return false
		}
		s.ref[p.right.low] = q.right.high
		if q.right.low != noEdge {
			p.right.low = q.right.low
		}
		if p.left.empty() {
			p.left = q.left
		} else {
			s.ref[p.left.low] = q.left.high
		}
		p.left.low = q.left.low
	}

	if !p.left.empty() || !p.right.empty() {
		s.stack = append(s.stack, p)
	}
	return true
}

func (s *lrState) removeBackEdges(e lrEdge) {
	u := e.from

	// drop entire conflict pairs returning to u
	for len(s.stack) > 0 && s.lowest(s.top()) == s.height[u] {
		s.pop()
	}

	if len(s.stack) > 0 {
		p := s.pop()
		for p.left.high != noEdge && p.left.high.to == u {
			p.left.high = s.refOf(p.left.high)
		}
		if p.left.high == noEdge && p.left.low != noEdge {
			s.ref[p.left.low] = p.right.low
			p.left.low = noEdge
		}
		for p.right.high != noEdge && p.right.high.to == u {
			p.right.high = s.refOf(p.right.high)
		}
		if p.right.high == noEdge && p.right.low != noEdge {
			s.ref[p.right.low] = p.left.low
			p.right.low = noEdge
		}
		s.stack = append(s.stack, p)
	}

	// side of e is the side of a highest return edge
	if s.lowpt[e] < s.height[u] && len(s.stack) > 0 {
		hl, hr := s.top().left.high, s.top().right.high
		if hl != noEdge && (hr == noEdge || s.lowpt[hl] > s.lowpt[hr]) {
			s.ref[e] = hl
		} else {
			s.ref[e] = hr
		}
	}
}
