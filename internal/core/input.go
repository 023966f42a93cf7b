package core

// Action represents a semantic input action, abstracted from physical key presses.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow - move cursor up
	ActionDown           // S, Down arrow - move cursor down
	ActionLeft           // A, Left arrow - move cursor left
	ActionRight          // D, Right arrow - move cursor right
	ActionSelect         // Space, Enter - click the cell under the cursor
	ActionShuffle        // X - spend one shuffle
	ActionNewGame        // N - start over after a game ends
	ActionQuit           // Q, Ctrl+C - exit game/session
	ActionHelp           // ? - toggle full help
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionSelect:
		return "Select"
	case ActionShuffle:
		return "Shuffle"
	case ActionNewGame:
		return "NewGame"
	case ActionQuit:
		return "Quit"
	case ActionHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// CellClick is a single "cell N was clicked" event for one player's board.
type CellClick struct {
	Player PlayerID
	Index  int
}

// InputSnapshot carries the discrete input events gathered since the last
// step. The platform builds it; games consume it without knowing whether it
// came from a keyboard, a mouse or a test.
type InputSnapshot struct {
	Clicks   []CellClick
	Shuffles []PlayerID
	NewGame  bool
}

// Click records a click on the given cell of a player's board.
func (in *InputSnapshot) Click(p PlayerID, index int) {
	in.Clicks = append(in.Clicks, CellClick{Player: p, Index: index})
}

// Shuffle records a shuffle request from a player.
func (in *InputSnapshot) Shuffle(p PlayerID) {
	in.Shuffles = append(in.Shuffles, p)
}

// Empty reports whether the snapshot carries no events.
func (in InputSnapshot) Empty() bool {
	return len(in.Clicks) == 0 && len(in.Shuffles) == 0 && !in.NewGame
}

// Clear resets the snapshot for the next step, keeping allocated capacity.
func (in *InputSnapshot) Clear() {
	in.Clicks = in.Clicks[:0]
	in.Shuffles = in.Shuffles[:0]
	in.NewGame = false
}
