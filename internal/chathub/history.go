package chathub

// partnerHistory remembers the most recent partners of each participant, most recent
// first. Participants are connection handles: a session id changes on every "next",
// the connection does not.
type partnerHistory struct {
	limit    int
	partners map[string][]string
}

func newPartnerHistory(limit int) *partnerHistory {
	return &partnerHistory{limit: limit, partners: make(map[string][]string)}
}

// record stores the pairing on both sides.
func (h *partnerHistory) record(a, b string) {
	h.push(a, b)
	h.push(b, a)
}

func (h *partnerHistory) push(owner, partner string) {
	if h.limit <= 0 {
		return
	}
	list := h.partners[owner]
	next := make([]string, 0, h.limit)
	next = append(next, partner)
	for _, p := range list {
		if p == partner {
			continue
		}
		if len(next) == h.limit {
			break
		}
		next = append(next, p)
	}
	h.partners[owner] = next
}

func (h *partnerHistory) contains(owner, partner string) bool {
	for _, p := range h.partners[owner] {
		if p == partner {
			return true
		}
	}
	return false
}

// forget drops the owner's own list. Entries naming the owner in other lists age out.
func (h *partnerHistory) forget(owner string) {
	delete(h.partners, owner)
}
