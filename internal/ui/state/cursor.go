package state

// Step moves the cursor by delta. With wrap the cursor cycles past either
// end; otherwise it stops there.
func (l *Level) Step(delta int, wrap bool) bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	next := old + delta
	if wrap {
		next = ((next % n) + n) % n
	} else {
		next = clamp(next, 0, n-1)
	}
	l.Cursor = next
	return next != old
}

// MoveCursorHome moves the cursor to the first item.
func (l *Level) MoveCursorHome() bool {
	return l.Step(-len(l.Items), false)
}

// MoveCursorEnd moves the cursor to the last item.
func (l *Level) MoveCursorEnd() bool {
	return l.Step(len(l.Items), false)
}

// MoveCursorPageUp moves the cursor up by one page.
func (l *Level) MoveCursorPageUp(maxVisible int) bool {
	return l.Step(-l.pageSize(maxVisible), false)
}

// MoveCursorPageDown moves the cursor down by one page.
func (l *Level) MoveCursorPageDown(maxVisible int) bool {
	return l.Step(l.pageSize(maxVisible), false)
}

func (l *Level) pageSize(maxVisible int) int {
	total := len(l.Items)
	if maxVisible <= 0 || maxVisible > total {
		return max(total, 1)
	}
	return maxVisible
}

// EnsureCursorVisible adjusts the viewport offset so the cursor stays visible.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, n-1)
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	offset := clamp(l.ViewportOffset, 0, max(n-maxVisible, 0))
	if l.Cursor < offset {
		offset = l.Cursor
	}
	if l.Cursor >= offset+maxVisible {
		offset = l.Cursor - maxVisible + 1
	}
	l.ViewportOffset = offset
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
