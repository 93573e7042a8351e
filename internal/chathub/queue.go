package chathub

// WaitingEntry is a session waiting for a partner.
type WaitingEntry struct {
	SessionID string
	ConnID    string
}

// waitingQueue keeps sessions in arrival order. A session id appears at most once.
type waitingQueue struct {
	entries []WaitingEntry
}

func (q *waitingQueue) push(e WaitingEntry) {
	q.remove(e.SessionID)
	q.entries = append(q.entries, e)
}

// pushFront puts the entry ahead of everyone else, used when a match attempt failed
// through no fault of the joiner.
func (q *waitingQueue) pushFront(e WaitingEntry) {
	q.remove(e.SessionID)
	q.entries = append([]WaitingEntry{e}, q.entries...)
}

func (q *waitingQueue) remove(sessionID string) bool {
	for i, e := range q.entries {
		if e.SessionID == sessionID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// evict removes every entry for which dead returns true, keeping the order of the
// rest, and returns what it removed.
func (q *waitingQueue) evict(dead func(WaitingEntry) bool) []WaitingEntry {
	var removed []WaitingEntry
	kept := q.entries[:0]
	for _, e := range q.entries {
		if dead(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	return removed
}

func (q *waitingQueue) len() int { return len(q.entries) }

func (q *waitingQueue) clear() { q.entries = nil }
