package thicket

import "math"

// PanAxis restricts the direction a pan must travel to be recognized.
type PanAxis uint8

const (
	PanAxisBoth PanAxis = iota
	PanAxisX
	PanAxisY
)

const (
	panHistoryDurationMS = 150
	panHistoryMaxLength  = panHistoryDurationMS
)

type panHistoryEntry struct {
	delta Vec2
	time  uint32
}

// PanGesture recognizes a drag of one or more points once the driving
// point has travelled past the begin threshold.
type PanGesture struct {
	Gesture

	Axis PanAxis

	// OnPanUpdate fires for every move of the driving point while the pan
	// is recognizing.
	OnPanUpdate func()

	beginThreshold    float64
	beginThresholdSet bool
	minPoints         int
	maxPoints         int

	thresholdReached bool
	usePoint         int
	startPoint       Vec2
	delta            Vec2
	totalDelta       Vec2

	history         []panHistoryEntry
	historyBegin    int
	lastHistoryTime uint32
	latestTime      uint32
}

// NewPanGesture creates a single-point pan gesture.
func NewPanGesture(name string) *PanGesture {
	p := &PanGesture{minPoints: 1}
	p.Init(name, p)
	p.ShouldHandleSequence = shouldHandlePress
	p.PointBegan = p.pointBegan
	p.PointMoved = p.pointMoved
	p.PointEnded = p.pointEnded
	p.StateChanged = p.stateChanged
	return p
}

// SetBeginThreshold sets the distance in pixels the driving point must
// travel before the pan is recognized. Zero recognizes on press.
func (p *PanGesture) SetBeginThreshold(px float64) {
	if px < 0 {
		px = 0
	}
	p.beginThreshold = px
	p.beginThresholdSet = true
}

// BeginThreshold returns the threshold in effect: the explicit one, or the
// stage's pan.begin_threshold.
func (p *PanGesture) BeginThreshold() float64 {
	if p.beginThresholdSet {
		return p.beginThreshold
	}
	return p.config().Pan.BeginThreshold
}

// SetMinPoints sets how many points must be down for the pan to begin.
func (p *PanGesture) SetMinPoints(n int) {
	if n < 1 {
		n = 1
	}
	if p.maxPoints != 0 && n > p.maxPoints {
		warnf("pan gesture %q: min points %d above max points %d", p.name, n, p.maxPoints)
		return
	}
	p.minPoints = n
}

// SetMaxPoints caps the number of points; zero means no cap.
func (p *PanGesture) SetMaxPoints(n int) {
	if n < 0 {
		n = 0
	}
	if n != 0 && n < p.minPoints {
		warnf("pan gesture %q: max points %d below min points %d", p.name, n, p.minPoints)
		return
	}
	p.maxPoints = n
}

// MinPoints returns the minimum number of points.
func (p *PanGesture) MinPoints() int { return p.minPoints }

// MaxPoints returns the maximum number of points, zero for no cap.
func (p *PanGesture) MaxPoints() int { return p.maxPoints }

// Delta returns the movement of the driving point in the latest update.
func (p *PanGesture) Delta() Vec2 { return p.delta }

// AccumulatedDelta returns the movement since the pan began.
func (p *PanGesture) AccumulatedDelta() Vec2 { return p.totalDelta }

// StartPoint returns the stage coordinates the pan began from.
func (p *PanGesture) StartPoint() Vec2 { return p.startPoint }

// Velocity returns the pan speed in pixels per millisecond over the most
// recent moves.
func (p *PanGesture) Velocity() Vec2 {
	var firstTime, lastTime uint32
	var acc Vec2
	found := false
	j := p.historyBegin
	for i := 0; i < len(p.history); i++ {
		if j == len(p.history) {
			j = 0
		}
		e := p.history[j]
		if p.latestTime < panHistoryDurationMS || e.time >= p.latestTime-panHistoryDurationMS {
			if !found {
				firstTime = e.time
				found = true
			}
			acc.X += e.delta.X
			acc.Y += e.delta.Y
			lastTime = e.time
		}
		j++
	}
	if firstTime == lastTime {
		return Vec2{}
	}
	dt := float64(lastTime - firstTime)
	return Vec2{acc.X / dt, acc.Y / dt}
}

func (p *PanGesture) addHistory(delta Vec2, time uint32) {
	// Keep at most one entry per millisecond.
	if len(p.history) > 0 && p.lastHistoryTime >= time {
		return
	}
	p.lastHistoryTime = time
	if len(p.history) < panHistoryMaxLength {
		p.history = append(p.history, panHistoryEntry{delta: delta, time: time})
		return
	}
	p.history[p.historyBegin] = panHistoryEntry{delta: delta, time: time}
	p.historyBegin = (p.historyBegin + 1) % panHistoryMaxLength
}

func (p *PanGesture) centroid(points []int) Vec2 {
	var c Vec2
	for _, pt := range points {
		v := p.PointBeginCoordsAbs(pt)
		c.X += v.X
		c.Y += v.Y
	}
	n := float64(len(points))
	return Vec2{c.X / n, c.Y / n}
}

func (p *PanGesture) pointBegan(point int) {
	n := p.NPoints()
	if n < p.minPoints {
		return
	}
	ev := p.PointEvent(point)
	// Mouse pans only follow the primary button.
	if ev.Type == EventButtonPress && ev.Button != MouseButtonLeft {
		p.Cancel()
		return
	}
	if p.State() == GesturePossible && p.maxPoints != 0 && n > p.maxPoints {
		p.Cancel()
		return
	}

	p.thresholdReached = false
	p.latestTime = ev.Time
	if len(p.history) == 0 {
		p.addHistory(Vec2{}, p.latestTime)
	}
	p.usePoint = point

	if p.State() == GesturePossible && p.BeginThreshold() == 0 {
		p.startPoint = p.centroid(p.Points())
		p.Recognize()
	}
}

func (p *PanGesture) pointMoved(point int) {
	// Only the driving point moves the pan.
	if point != p.usePoint {
		return
	}
	ev := p.PointEvent(point)
	p.latestTime = ev.Time

	p.delta = p.PointCoordsAbs(point).Sub(p.PointPreviousCoordsAbs(point))
	p.addHistory(p.delta, p.latestTime)
	p.totalDelta.X += p.delta.X
	p.totalDelta.Y += p.delta.Y

	if !p.thresholdReached {
		threshold := p.BeginThreshold()
		var travelled float64
		switch p.Axis {
		case PanAxisX:
			travelled = math.Abs(p.totalDelta.X)
		case PanAxisY:
			travelled = math.Abs(p.totalDelta.Y)
		default:
			travelled = p.totalDelta.Len()
		}
		if travelled < threshold {
			return
		}
	}
	p.thresholdReached = true

	n := p.NPoints()
	if p.State() == GesturePossible && n >= p.minPoints &&
		(p.maxPoints == 0 || n <= p.maxPoints) {
		p.startPoint = p.centroid([]int{point})
		p.Recognize()
	}
	if p.State() == GestureRecognizing && p.OnPanUpdate != nil {
		p.OnPanUpdate()
	}
}

func (p *PanGesture) pointEnded(point int) {
	if p.NPoints()-1 >= p.minPoints {
		// Enough points remain; hand the pan to another one.
		for _, pt := range p.Points() {
			if pt != point {
				p.usePoint = pt
				break
			}
		}
		return
	}
	p.latestTime = p.PointEvent(point).Time
	if p.State() == GestureRecognizing {
		p.Complete()
	} else {
		p.Cancel()
	}
}

func (p *PanGesture) stateChanged(_, newState GestureState) {
	if newState != GestureWaiting {
		return
	}
	p.delta = Vec2{}
	p.totalDelta = Vec2{}
	p.thresholdReached = false
	clear(p.history)
	p.history = p.history[:0]
	p.historyBegin = 0
}
