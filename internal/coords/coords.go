// Package coords converts sexagesimal EXIF coordinates to signed decimal degrees.
package coords

import (
	"errors"
	"fmt"
	"math/big"
)

var ErrUnavailable = errors.New("coordinate unavailable")

// Decimal converts a degree/minute/second triple and a hemisphere reference
// letter (N, S, E or W) into decimal degrees. S and W yield negative values.
func Decimal(dms []*big.Rat, ref byte) (float64, error) {
	if len(dms) < 3 {
		return 0, fmt.Errorf("%w: expected 3 components, got %d", ErrUnavailable, len(dms))
	}

	var parts [3]float64
	for i := 0; i < 3; i++ {
		if dms[i] == nil {
			return 0, fmt.Errorf("%w: missing component %d", ErrUnavailable, i)
		}
		parts[i], _ = dms[i].Float64()
	}

	value := parts[0] + parts[1]/60 + parts[2]/3600

	switch ref {
	case 'N', 'E':
		return value, nil
	case 'S', 'W':
		return -value, nil
	default:
		return 0, fmt.Errorf("%w: unknown reference %q", ErrUnavailable, ref)
	}
}
