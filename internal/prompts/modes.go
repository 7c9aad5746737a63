package prompts

// FocusMode selects the instruction set used for a conversation.
type FocusMode string

const (
	ModeGeneral        FocusMode = "general"
	ModeContentWriting FocusMode = "contentWriting"
	ModeCoding         FocusMode = "coding"
	ModeReasoning      FocusMode = "reasoning"
	ModeWebSearch      FocusMode = "webSearch"
)

var modeOrder = []FocusMode{ModeGeneral, ModeContentWriting, ModeCoding, ModeReasoning, ModeWebSearch}

// ParseFocusMode returns the mode named by s, or ModeGeneral when s is not a
// known mode.
func ParseFocusMode(s string) FocusMode {
	m := FocusMode(s)
	if _, ok := profiles[m]; ok {
		return m
	}
	return ModeGeneral
}

// Modes lists the supported modes in display order.
func Modes() []FocusMode {
	out := make([]FocusMode, len(modeOrder))
	copy(out, modeOrder)
	return out
}

// Valid reports whether m is a known mode.
func (m FocusMode) Valid() bool {
	_, ok := profiles[m]
	return ok
}

// Label is the human-readable mode name.
func (m FocusMode) Label() string {
	return profileFor(m).label
}

// Description is a one-line summary of the mode.
func (m FocusMode) Description() string {
	return profileFor(m).description
}

func (m FocusMode) String() string {
	return string(m)
}
