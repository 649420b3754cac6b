package lattice

// Move is one of the three lattice steps. No other moves exist.
type Move byte

const (
	// Horiz advances X only: Δ = (1,0).
	Horiz Move = '-'
	// Vert advances Y only: Δ = (0,1).
	Vert Move = '|'
	// Diag advances both: Δ = (1,1).
	Diag Move = '/'
)

// Delta returns the (dx, dy) step for m.
func (m Move) Delta() (int, int) {
	switch m {
	case Horiz:
		return 1, 0
	case Vert:
		return 0, 1
	case Diag:
		return 1, 1
	default:
		panic("lattice: invalid move " + string(m))
	}
}

// IsDiag reports whether m is the diagonal move. A family change in the
// corridor DP is a consecutive pair of moves where exactly one of the
// pair has IsDiag true.
func (m Move) IsDiag() bool { return m == Diag }

func (m Move) String() string { return string(m) }

func validMove(b byte) bool {
	switch Move(b) {
	case Horiz, Vert, Diag:
		return true
	default:
		return false
	}
}
