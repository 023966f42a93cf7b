package engine

// Step is a player's position in the turn cycle.
type Step int

const (
	StepInput             Step = iota // waiting for a local click
	StepNetworkInput                  // waiting for a remote command
	StepCheckMatch                    // a swap was made, resolve matches
	StepCheckMatchShuffle             // a shuffle was made, resolve matches
	StepCheckDeadlock                 // board settled, make sure a move exists
	StepWaiting                       // the other player's turn
	StepComplete                      // turn finished, session hands it off
	StepWin
	StepLose
)

func (s Step) String() string {
	switch s {
	case StepInput:
		return "Input"
	case StepNetworkInput:
		return "NetworkInput"
	case StepCheckMatch:
		return "CheckMatch"
	case StepCheckMatchShuffle:
		return "CheckMatchShuffle"
	case StepCheckDeadlock:
		return "CheckDeadlock"
	case StepWaiting:
		return "Waiting"
	case StepComplete:
		return "Complete"
	case StepWin:
		return "Win"
	case StepLose:
		return "Lose"
	default:
		return "Unknown"
	}
}

// Resting reports whether the step waits for outside input.
func (s Step) Resting() bool {
	switch s {
	case StepInput, StepNetworkInput, StepWaiting, StepWin, StepLose:
		return true
	default:
		return false
	}
}

// Control says where a player's moves come from.
type Control int

const (
	ControlLocal Control = iota
	ControlRemote
)

// NoSelection means no cell is selected.
const NoSelection = -1

// Player is one side of a session: a board plus its turn state.
type Player struct {
	index    int
	control  Control
	board    *Board
	step     Step
	selected int
	shuffles int
	lastSwap [2]int

	// deadlock shuffles since the last move started
	jams int
}

func newPlayer(index int, control Control, board *Board) *Player {
	return &Player{
		index:    index,
		control:  control,
		board:    board,
		step:     StepWaiting,
		selected: NoSelection,
		lastSwap: [2]int{NoNeighbor, NoNeighbor},
	}
}

func (p *Player) Index() int        { return p.index }
func (p *Player) Control() Control  { return p.control }
func (p *Player) Board() *Board     { return p.board }
func (p *Player) Step() Step        { return p.step }
func (p *Player) Selected() int     { return p.selected }
func (p *Player) ShufflesLeft() int { return p.shuffles }

// LastSwap returns the cells of the most recent swap.
func (p *Player) LastSwap() (int, int) { return p.lastSwap[0], p.lastSwap[1] }

// DeadlockShuffles returns how many times the board had to be reshuffled
// because no move was left, since the player's last move started.
func (p *Player) DeadlockShuffles() int { return p.jams }

// RestingStep is the step the player waits in when it has the move.
func (p *Player) RestingStep() Step {
	if p.control == ControlRemote {
		return StepNetworkInput
	}
	return StepInput
}

// click applies a local click and reports whether it produced a swap.
func (p *Player) click(i int) bool {
	if p.step != StepInput || !p.board.InBounds(i) {
		return false
	}
	if p.selected != NoSelection && p.board.IsSwapCandidate(p.selected, i) {
		p.swap(p.selected, i)
		return true
	}
	p.selected = i
	return false
}

func (p *Player) swap(a, b int) {
	p.board.Swap(a, b)
	p.lastSwap = [2]int{a, b}
	p.selected = NoSelection
	p.jams = 0
	p.step = StepCheckMatch
}

func (p *Player) revertSwap() {
	p.board.Swap(p.lastSwap[0], p.lastSwap[1])
}

// shuffle spends one shuffle. An exhausted allowance is ignored.
func (p *Player) shuffle() bool {
	if p.shuffles <= 0 {
		return false
	}
	p.shuffles--
	p.board.ShuffleBoard()
	p.selected = NoSelection
	p.jams = 0
	p.step = StepCheckMatchShuffle
	return true
}
