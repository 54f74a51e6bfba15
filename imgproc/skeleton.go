package imgproc

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ThinningAlgorithm selects the parallel thinning rule.
type ThinningAlgorithm int

const (
	// ZhangSuen is the two-subiteration rule from "A fast parallel
	// algorithm for thinning digital patterns" (Zhang & Suen).
	ZhangSuen ThinningAlgorithm = iota
	// GuoHall is the rule from "Parallel thinning with two
	// sub-iteration algorithms" (Guo & Hall).
	GuoHall
)

// maxThinningPasses caps the iteration count for inputs that never
// stabilize.
const maxThinningPasses = 100

// Thinning reduces a binary raster to a one-pixel-wide skeleton,
// iterating the chosen rule until no pixel changes in a pass.
type Thinning struct {
	Algorithm ThinningAlgorithm
}

// NewThinning builds a thinning step.
func NewThinning(algorithm ThinningAlgorithm) (*Thinning, error) {
	if algorithm != ZhangSuen && algorithm != GuoHall {
		return nil, fmt.Errorf("%w: thinning algorithm %d", ErrInvalidArgument, algorithm)
	}
	return &Thinning{Algorithm: algorithm}, nil
}

// ProcessType returns TypeThinning.
func (p *Thinning) ProcessType() Type { return TypeThinning }

// Run skeletonizes the raster. Input must be single-channel 8-bit;
// any nonzero pixel counts as foreground and the output is 0/255.
func (p *Thinning) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	if in.Channels() != 1 || in.Type() != gocv.MatTypeCV8U {
		return fmt.Errorf("%w: thinning needs single-channel 8-bit input", ErrInvalidArgument)
	}

	rows, cols := in.Rows(), in.Cols()
	img := make([][]uint8, rows)
	for r := 0; r < rows; r++ {
		img[r] = make([]uint8, cols)
		for c := 0; c < cols; c++ {
			if in.GetUCharAt(r, c) != 0 {
				img[r][c] = 1
			}
		}
	}

	for pass := 0; pass < maxThinningPasses; pass++ {
		changed := false
		for sub := 0; sub < 2; sub++ {
			var marks [][2]int
			for r := 1; r < rows-1; r++ {
				for c := 1; c < cols-1; c++ {
					if img[r][c] == 0 {
						continue
					}
					var del bool
					if p.Algorithm == ZhangSuen {
						del = zhangSuenDelete(img, r, c, sub)
					} else {
						del = guoHallDelete(img, r, c, sub)
					}
					if del {
						marks = append(marks, [2]int{r, c})
					}
				}
			}
			for _, m := range marks {
				img[m[0]][m[1]] = 0
			}
			if len(marks) > 0 {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	result := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if img[r][c] != 0 {
				result.SetUCharAt(r, c, 255)
			} else {
				result.SetUCharAt(r, c, 0)
			}
		}
	}
	result.CopyTo(out)
	result.Close()
	return nil
}

// neighbors returns p2..p9 clockwise starting from the pixel above.
func neighbors(img [][]uint8, r, c int) (p2, p3, p4, p5, p6, p7, p8, p9 uint8) {
	return img[r-1][c], img[r-1][c+1], img[r][c+1], img[r+1][c+1],
		img[r+1][c], img[r+1][c-1], img[r][c-1], img[r-1][c-1]
}

func zhangSuenDelete(img [][]uint8, r, c, sub int) bool {
	p2, p3, p4, p5, p6, p7, p8, p9 := neighbors(img, r, c)

	b := int(p2) + int(p3) + int(p4) + int(p5) + int(p6) + int(p7) + int(p8) + int(p9)
	if b < 2 || b > 6 {
		return false
	}

	// A(p): number of 0→1 transitions in the circular neighbor sequence.
	seq := [9]uint8{p2, p3, p4, p5, p6, p7, p8, p9, p2}
	a := 0
	for i := 0; i < 8; i++ {
		if seq[i] == 0 && seq[i+1] == 1 {
			a++
		}
	}
	if a != 1 {
		return false
	}

	if sub == 0 {
		return p2*p4*p6 == 0 && p4*p6*p8 == 0
	}
	return p2*p4*p8 == 0 && p2*p6*p8 == 0
}

func guoHallDelete(img [][]uint8, r, c, sub int) bool {
	p2, p3, p4, p5, p6, p7, p8, p9 := neighbors(img, r, c)

	cNum := int((1-p2)&(p3|p4)) + int((1-p4)&(p5|p6)) +
		int((1-p6)&(p7|p8)) + int((1-p8)&(p9|p2))
	if cNum != 1 {
		return false
	}

	n1 := int(p9|p2) + int(p3|p4) + int(p5|p6) + int(p7|p8)
	n2 := int(p2|p3) + int(p4|p5) + int(p6|p7) + int(p8|p9)
	n := n1
	if n2 < n {
		n = n2
	}
	if n < 2 || n > 3 {
		return false
	}

	var m uint8
	if sub == 0 {
		m = (p6 | p7 | (1 - p9)) & p8
	} else {
		m = (p2 | p3 | (1 - p5)) & p4
	}
	return m == 0
}
