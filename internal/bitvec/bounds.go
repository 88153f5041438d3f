package bitvec

import (
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// CheckIndex returns an ErrBoundsViolation reporting "i:length" unless
// 0 <= i < length.
func CheckIndex(i, length int64) error {
	if i < 0 || i >= length {
		return fmt.Errorf("%w: %d:%d", seederrors.ErrBoundsViolation, i, length)
	}
	return nil
}
