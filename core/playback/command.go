package playback

// Command is what a channel plugin produces for one play request. It is a
// closed union with exactly two variants: DeepLink and ActionSequence.
// Commands are built once, never persisted and never mutated.
type Command interface {
	isCommand()
}

// DeepLink launches a channel directly into specific content with a single
// resolved launch call.
type DeepLink struct {
	ChannelID string
	Params    string // ordered &-joined key=value list
}

// ActionSequence is an open-loop, timed list of simulated remote-control
// operations, used when a channel offers no direct deep link.
type ActionSequence struct {
	Actions []Action
}

func (DeepLink) isCommand()       {}
func (ActionSequence) isCommand() {}
