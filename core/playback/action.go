package playback

import "fmt"

// Key is a remote-control key name understood by the device's keypress endpoint.
type Key string

const (
	KeyHome   Key = "Home"
	KeyBack   Key = "Back"
	KeySelect Key = "Select"
	KeyUp     Key = "Up"
	KeyDown   Key = "Down"
	KeyLeft   Key = "Left"
	KeyRight  Key = "Right"
	KeyPlay   Key = "Play"
	KeyRev    Key = "Rev"
	KeyFwd    Key = "Fwd"
	KeyEnter  Key = "Enter"
)

// Action is a single step of a device automation sequence. It is a closed
// union: Launch, Press, Type and Wait are the only variants. Order inside an
// ActionSequence is significant and preserved exactly as produced.
type Action interface {
	isAction()
	String() string
}

// Launch opens a channel, optionally with launch parameters.
type Launch struct {
	ChannelID string
	Params    string // ordered &-joined key=value list, may be empty
}

// Press sends a remote key press Count times. Count is at least 1.
type Press struct {
	Key   Key
	Count int
}

// Type spells out text as individual literal key presses.
type Type struct {
	Text string
}

// Wait pauses the sequence for the given number of milliseconds. No network
// call is made.
type Wait struct {
	Milliseconds int
}

func (Launch) isAction() {}
func (Press) isAction()  {}
func (Type) isAction()   {}
func (Wait) isAction()   {}

func (a Launch) String() string {
	if a.Params == "" {
		return fmt.Sprintf("launch(%s)", a.ChannelID)
	}
	return fmt.Sprintf("launch(%s?%s)", a.ChannelID, a.Params)
}

func (a Press) String() string {
	return fmt.Sprintf("press(%s x%d)", a.Key, a.Count)
}

func (a Type) String() string {
	return fmt.Sprintf("type(%q)", a.Text)
}

func (a Wait) String() string {
	return fmt.Sprintf("wait(%dms)", a.Milliseconds)
}
