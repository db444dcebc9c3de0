package cvtrack

import "sync"

// Point represents the x,y coordinates of the center of a tracked region
type Point struct {
	X, Y int
}

// Trail keeps a bounded history of region centers per MultiTracker slot,
// used for drawing the path an object has taken
type Trail struct {
	// size is the maximum number of most recent points kept per slot
	size int
	// history of points keyed by MultiTracker slot index
	history map[int][]Point
	sync.Mutex
}

// NewTrail returns a new trail history.  Size is the maximum length of the
// trail kept for each slot, values below 1 keep only the latest point
func NewTrail(size int) *Trail {

	if size < 1 {
		size = 1
	}

	return &Trail{
		size:    size,
		history: make(map[int][]Point),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int][]Point)
}

// Add records the center of the region for the slot.  A nil region, ie: a
// lost target, is not recorded
func (t *Trail) Add(slot int, region *Region) {

	if region == nil {
		return
	}

	t.Lock()
	defer t.Unlock()

	cx, cy := region.Center()
	points := append(t.history[slot], Point{X: int(cx), Y: int(cy)})

	// drop oldest point when history is exceeded
	if len(points) > t.size {
		points = points[len(points)-t.size:]
	}

	t.history[slot] = points
}

// AddAll records the results of a MultiTracker Update, using each result's
// position as its slot
func (t *Trail) AddAll(results []*Region) {
	for i, r := range results {
		t.Add(i, r)
	}
}

// GetPoints returns a copy of the point history of a slot
func (t *Trail) GetPoints(slot int) []Point {
	t.Lock()
	defer t.Unlock()

	points, exists := t.history[slot]

	if !exists {
		return nil
	}

	return append([]Point(nil), points...)
}
