package thicket

// SetupSequenceRelationship negotiates with another gesture sharing a
// sequence. The first negotiation between a pair is final: later shared
// sequences reuse it. The result is negative when g will not be cancelled
// by other but cancels it, positive for the reverse, zero otherwise.
func (g *Gesture) SetupSequenceRelationship(other Action, ev *Event) int {
	o := AsGesture(other)
	if o == nil {
		return 0
	}
	g.assert(g.state == GesturePossible || g.state == GestureRecognizing, "negotiating while not tracking")
	g.assert(o.state == GesturePossible || o.state == GestureRecognizing, "negotiating with a gesture not tracking")

	var cancelG, cancelO bool
	if _, ok := g.related[o]; ok {
		cancelG = containsGesture(o.cancelOnRecognizing, g)
		cancelO = containsGesture(g.cancelOnRecognizing, o)
	} else {
		cancelO = g.influenceOn(o)
		cancelG = o.influenceOn(g)
		g.debugf("setting up relation with %q (cancel self: %t, cancel other: %t)", o.name, cancelG, cancelO)

		if g.related == nil {
			g.related = make(map[*Gesture]struct{})
		}
		if o.related == nil {
			o.related = make(map[*Gesture]struct{})
		}
		g.related[o] = struct{}{}
		o.related[g] = struct{}{}
		if cancelO {
			g.cancelOnRecognizing = append(g.cancelOnRecognizing, o)
		}
		if cancelG {
			o.cancelOnRecognizing = append(o.cancelOnRecognizing, g)
		}
	}

	switch {
	case cancelO && !cancelG:
		return -1
	case !cancelO && cancelG:
		return 1
	}
	return 0
}

// influenceOn decides whether g cancels other when g recognizes.
func (g *Gesture) influenceOn(other *Gesture) bool {
	cancel := true
	if g.ShouldInfluence != nil {
		g.ShouldInfluence(other, &cancel)
	}
	if other.ShouldBeInfluencedBy != nil {
		other.ShouldBeInfluencedBy(g, &cancel)
	}
	if _, ok := g.canNotCancel[other]; ok {
		cancel = false
	}
	return cancel
}

func containsGesture(list []*Gesture, g *Gesture) bool {
	for _, cur := range list {
		if cur == g {
			return true
		}
	}
	return false
}

// CanNotCancel makes sure g never cancels other when it recognizes. The
// override lasts until either gesture is disposed.
func (g *Gesture) CanNotCancel(other *Gesture) {
	if other == nil || other == g {
		return
	}
	if g.canNotCancel == nil {
		g.canNotCancel = make(map[*Gesture]struct{})
	}
	if other.canNotCancelBy == nil {
		other.canNotCancelBy = make(map[*Gesture]struct{})
	}
	g.canNotCancel[other] = struct{}{}
	other.canNotCancelBy[g] = struct{}{}
}

// IsRelatedTo reports whether the two gestures negotiated a relationship
// for their current points.
func (g *Gesture) IsRelatedTo(other *Gesture) bool {
	_, ok := g.related[other]
	return ok
}

func removeGesture(list []*Gesture, g *Gesture) []*Gesture {
	for i, cur := range list {
		if cur == g {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
