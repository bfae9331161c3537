// ABOUTME: In-memory view of the event timeline used by batch analyses
// ABOUTME: Events are kept in (start_date, id) order with an id lookup
package core

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harper/lifeline/internal/models"
)

type eventIndex struct {
	ordered []*models.Event
	byID    map[string]*models.Event
}

func indexEvents(events []models.Event) *eventIndex {
	idx := &eventIndex{
		ordered: make([]*models.Event, 0, len(events)),
		byID:    make(map[string]*models.Event, len(events)),
	}
	for i := range events {
		e := &events[i]
		idx.ordered = append(idx.ordered, e)
		idx.byID[e.ID] = e
	}
	sort.SliceStable(idx.ordered, func(i, j int) bool {
		a, b := idx.ordered[i], idx.ordered[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})
	return idx
}

// neighbors returns events whose date range overlaps source or lies within adjacentDays
func (idx *eventIndex) neighbors(source *models.Event, adjacentDays int) []*models.Event {
	var out []*models.Event
	for _, e := range idx.ordered {
		if e.ID == source.ID {
			continue
		}
		// Later events only get further away once they start past the window
		if e.StartDate.After(source.End().Add(time.Duration(adjacentDays) * day)) {
			break
		}
		if temporalNeighbors(source, e, adjacentDays) {
			out = append(out, e)
		}
	}
	return out
}

type atomicCounter struct {
	n atomic.Int64
}

func (c *atomicCounter) add(v int) { c.n.Add(int64(v)) }
func (c *atomicCounter) load() int { return int(c.n.Load()) }

// pairSet records unordered event pairs already classified in a run
type pairSet struct {
	mu   sync.Mutex
	seen map[[2]string]bool
}

func newPairSet() *pairSet {
	return &pairSet{seen: make(map[[2]string]bool)}
}

// claim returns true the first time a pair is seen in either order
func (p *pairSet) claim(a, b string) bool {
	if b < a {
		a, b = b, a
	}
	key := [2]string{a, b}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen[key] {
		return false
	}
	p.seen[key] = true
	return true
}
