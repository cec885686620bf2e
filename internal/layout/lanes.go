package layout

// assignLanes gives every span the lowest-indexed lane that is already free
// when the span starts, opening a new lane only when none is. spans must be
// sorted by start. A lane is free when its last end offset is <= the span's
// start offset, so a checkout day shared with the next check-in reuses the
// lane. Cost is O(n * lanes in use).
//
// First-fit in start order uses the minimum number of lanes: lane k is opened
// only when lanes 0..k-1 all end after this start, and each of them holds a
// span that started no later, so k+1 spans overlap at that offset.
func assignLanes(spans []span) (lanes []int, laneCount int) {
	lanes = make([]int, len(spans))
	laneEnds := make([]int, 0, 4)

	for i, sp := range spans {
		lane := -1
		for l, end := range laneEnds {
			if end <= sp.startOffset {
				lane = l
				break
			}
		}
		if lane == -1 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, 0)
		}
		laneEnds[lane] = sp.endOffset
		lanes[i] = lane
	}

	return lanes, len(laneEnds)
}
