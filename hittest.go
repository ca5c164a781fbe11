package thicket

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}
	var positive, negative bool
	for i := 0; i < n; i++ {
		x1, y1 := p.Points[i].X, p.Points[i].Y
		j := (i + 1) % n
		x2, y2 := p.Points[j].X, p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// --- Picking ---

// Picker resolves the node under a stage point. It returns the stage root
// when nothing else is hit, never nil. The optional clear area is a region
// around the point where the same answer holds; motion inside it is not
// re-picked.
type Picker interface {
	Pick(s *Stage, x, y float64) (*Node, *Rect)
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(s *Stage, x, y float64) (*Node, *Rect)

// Pick calls f.
func (f PickerFunc) Pick(s *Stage, x, y float64) (*Node, *Rect) { return f(s, x, y) }

// treePicker hit-tests mapped reactive nodes in reverse painter order.
type treePicker struct {
	buf []*Node
}

// collectPickable walks the tree in painter order (DFS, child order),
// appending mapped reactive nodes that carry a hit shape.
func collectPickable(n *Node, buf []*Node) []*Node {
	if !n.mapped {
		return buf
	}
	if n.reactive && n.HitShape != nil {
		buf = append(buf, n)
	}
	for _, child := range n.children {
		buf = collectPickable(child, buf)
	}
	return buf
}

func (p *treePicker) Pick(s *Stage, x, y float64) (*Node, *Rect) {
	p.buf = collectPickable(s.root, p.buf[:0])
	defer clear(p.buf)
	for i := len(p.buf) - 1; i >= 0; i-- {
		n := p.buf[i]
		lx, ly := n.WorldToLocal(x, y)
		if n.HitShape.Contains(lx, ly) {
			return n, nil
		}
	}
	return s.root, nil
}
