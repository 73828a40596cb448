package entity

// BoardMask - 9-bit set of the cells occupied by one side.
// Bit i is cell i of the 3x3 board in row-major order.
type BoardMask uint16

// Evaluation - outcome of checking one side's mask against the winning lines.
type Evaluation int

const (
	StillOpen Evaluation = iota
	Win
	Blocked
)

const (
	BoardSize = 9

	FullBoard BoardMask = 0b111_111_111
)

var WinningMasks = [8]BoardMask{
	0b000_000_111, // row 0
	0b000_111_000, // row 1
	0b111_000_000, // row 2
	0b001_001_001, // col 0
	0b010_010_010, // col 1
	0b100_100_100, // col 2
	0b100_010_001, // main diagonal
	0b001_010_100, // anti-diagonal
}

// CellBit - returns the mask of a single cell by its row-major index.
// An index outside the board yields an empty mask.
func CellBit(index int) BoardMask {
	if index < 0 || index >= BoardSize {
		return 0
	}

	return 1 << index
}

// IsSingleCell - true if cell is exactly one bit inside the board.
func IsSingleCell(cell BoardMask) bool {
	return cell != 0 && cell&FullBoard == cell && cell&(cell-1) == 0
}

// IsCellFree - true if neither side occupies the cell.
func IsCellFree(firstMask, secondMask, cell BoardMask) bool {
	return firstMask&cell == 0 && secondMask&cell == 0
}

// Evaluate - checks own mask for a completed line.
// A line stays open while at most one side has stones in it; once every line
// holds stones of both sides nobody can win anymore.
func Evaluate(own, opponent BoardMask) Evaluation {
	anyOpen := false

	for _, line := range WinningMasks {
		if own&line == line {
			return Win
		}

		if own&line == 0 || opponent&line == 0 {
			anyOpen = true
		}
	}

	if anyOpen {
		return StillOpen
	}

	return Blocked
}
