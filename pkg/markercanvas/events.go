package markercanvas

// MarkerAt returns the marker whose icon covers container point p, or nil.
// When icons overlap the one painted last, which is on top, wins. Icons
// still loading rank below painted ones, the most recently added first.
func (l *Layer) MarkerAt(p Point) *Marker {
	hits := l.boxes.Search(PointBox(p))
	if len(hits) == 0 {
		return nil
	}

	top := hits[len(hits)-1].Value
	for i := len(hits) - 2; i >= 0; i-- {
		if m := hits[i].Value; l.painted[m] > l.painted[top] {
			top = m
		}
	}
	return top
}

// Hovered returns the marker currently under the pointer, or nil.
func (l *Layer) Hovered() *Marker {
	return l.hover
}

// fire turns a host pointer event into marker events.
func (l *Layer) fire(ev Event) {
	if !l.opts.Interactive || l.viewport == nil {
		return
	}

	m := l.MarkerAt(ev.ContainerPoint)
	if m == nil {
		l.viewport.SetCursor("")
		if ev.Type == EventMouseMove && l.hover != nil {
			prev := l.hover
			l.hover = nil
			l.notify(prev, EventMouseOut, ev)
		}
		return
	}

	l.viewport.SetCursor(l.opts.Cursor)

	switch ev.Type {
	case EventClick:
		l.notify(m, EventClick, ev)

	case EventMouseMove:
		if l.hover == m {
			return
		}
		// Leave before enter
		if prev := l.hover; prev != nil {
			l.notify(prev, EventMouseOut, ev)
		}
		l.hover = m
		l.notify(m, EventMouseOver, ev)
	}
}

// leave drops the hover state, firing mouseout on the marker that had it,
// and resets the cursor.
func (l *Layer) leave() {
	prev := l.hover
	if prev == nil {
		return
	}
	l.hover = nil

	ev := Event{Type: EventMouseMove}
	if l.viewport != nil {
		l.viewport.SetCursor("")
		ev.ContainerPoint = l.viewport.LatLngToContainerPoint(prev.latLng)
	}
	l.notify(prev, EventMouseOut, ev)
}

// notify fires t on m if m listens for it.
func (l *Layer) notify(m *Marker, t EventType, ev Event) {
	if !m.Listens(t) {
		return
	}
	m.Fire(MarkerEvent{
		Type:           t,
		Target:         m,
		ContainerPoint: ev.ContainerPoint,
		LatLng:         m.latLng,
	})
}
