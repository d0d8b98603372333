package collocate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SubstituteMatrix writes sub into the cross product rows × cols of dst.
// Row and column index lists may be arbitrary (non-contiguous); sub must be
// len(rows) × len(cols). dst may be any mutable matrix, dense or sparse.
func SubstituteMatrix(dst mat.Mutable, rows, cols []int, sub mat.Matrix) error {
	sr, sc := sub.Dims()
	if sr != len(rows) || sc != len(cols) {
		return fmt.Errorf("%w: submatrix is %dx%d for %d rows and %d cols",
			ErrShapeMismatch, sr, sc, len(rows), len(cols))
	}

	dr, dc := dst.Dims()
	for _, r := range rows {
		if r < 0 || r >= dr {
			return fmt.Errorf("%w: row %d outside %dx%d destination", ErrShapeMismatch, r, dr, dc)
		}
	}
	for _, c := range cols {
		if c < 0 || c >= dc {
			return fmt.Errorf("%w: col %d outside %dx%d destination", ErrShapeMismatch, c, dr, dc)
		}
	}

	for i, r := range rows {
		for j, c := range cols {
			dst.Set(r, c, sub.At(i, j))
		}
	}
	return nil
}
