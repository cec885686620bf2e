package models

const (
	SourceAirbnb     = "airbnb"
	SourceBookingCom = "booking.com"
	SourceVrbo       = "vrbo"
	SourceExpedia    = "expedia"
	SourceGoogle     = "google"
	SourceDirect     = "direct"
)

const (
	// GuestPlaceholder is shown when a record carries no usable name.
	GuestPlaceholder = "Guest"

	// MonthLayout is the wire format of ViewState.Month.
	MonthLayout = "2006-01"

	// RoomFilterAll selects every configured room.
	RoomFilterAll = "all"
)

const (
	DefaultDayWidthPx   = 40
	DefaultLaneHeightPx = 28
	DefaultRowPaddingPx = 4

	// DefaultResizeDebounceMs coalesces bursts of viewport changes.
	DefaultResizeDebounceMs = 150

	// DefaultViewStateTTL is how long a session's view survives, in seconds.
	DefaultViewStateTTL = 30 * 24 * 60 * 60

	// DefaultSessionIdle is how long an unused session stays in memory, in
	// seconds. Its view remains in the repository.
	DefaultSessionIdle = 30 * 60

	// DefaultUpstreamTimeout bounds one upstream request, in seconds.
	DefaultUpstreamTimeout = 15
)
