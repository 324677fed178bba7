package recorder

// Event is the payload stored in one Ring slot.
type Event struct {
	// Order is the global, cross-recorder monotonic counter at the
	// moment the event was claimed.
	Order uint64
	// Timestamp is the tick() value read when the event was recorded.
	Timestamp uint64
	// Where is an opaque caller-owned source-location string.
	Where string
	// Format is the printf-style format string, caller-owned.
	Format string
	// Args holds up to MaxArgs packed machine words, for shared-memory
	// export and for rendering when Raw is nil.
	Args Args
	// NArgs is the number of Args slots actually populated.
	NArgs int
	// Raw holds the original arguments as passed to Record, so rendering
	// can reproduce non-numeric arguments (strings in particular) that a
	// single packed machine word cannot carry. It is nil for events
	// recorded through RecordArgs, whose whole point is to avoid the
	// allocation Raw requires.
	Raw []any
}
