package suspend

// A Channel holds work that the engine's event queue cannot see, such as
// bytes received by a foreign goroutine. Channels are compared by identity,
// so implementations should be pointer types.
type Channel interface {
	Name() string
}

// ChannelRegistry tracks the channels that currently hold undelivered work.
// It is not safe for concurrent use; the Coordinator guards it.
type ChannelRegistry struct {
	channels []Channel
	hasAny   bool
}

// NewChannelRegistry creates an empty registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{}
}

// Attach adds the channel. It returns false if the channel is already
// attached.
func (r *ChannelRegistry) Attach(ch Channel) bool {
	mustNotBeNil(ch)

	if r.indexOf(ch) >= 0 {
		return false
	}

	r.channels = append(r.channels, ch)
	r.hasAny = true

	return true
}

// Detach removes the channel. It returns false if the channel is not
// attached. The order of the remaining channels is not preserved.
func (r *ChannelRegistry) Detach(ch Channel) bool {
	mustNotBeNil(ch)

	i := r.indexOf(ch)
	if i < 0 {
		return false
	}

	last := len(r.channels) - 1
	r.channels[i] = r.channels[last]
	r.channels[last] = nil
	r.channels = r.channels[:last]
	r.hasAny = len(r.channels) > 0

	return true
}

// HasAny tells if at least one channel is attached.
func (r *ChannelRegistry) HasAny() bool {
	return r.hasAny
}

// Len returns the number of attached channels.
func (r *ChannelRegistry) Len() int {
	return len(r.channels)
}

// Names returns the names of the attached channels.
func (r *ChannelRegistry) Names() []string {
	names := make([]string, 0, len(r.channels))
	for _, ch := range r.channels {
		names = append(names, ch.Name())
	}

	return names
}

func (r *ChannelRegistry) indexOf(ch Channel) int {
	for i, c := range r.channels {
		if c == ch {
			return i
		}
	}

	return -1
}

func mustNotBeNil(ch Channel) {
	if ch == nil {
		panic("suspend: suspending channel must not be nil")
	}
}
