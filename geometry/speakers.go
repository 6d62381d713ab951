package geometry

import (
	"fmt"
	"sort"
	"strings"
)

// SpeakerPolicy selects the grid cells that hold transmitters. The order of
// the returned indices defines the transmitter sequence index.
type SpeakerPolicy interface {
	Name() string
	Select(rows, cols int) ([]int, error)
}

// Policy names accepted by [PolicyByName].
const (
	PolicyCornersAndCenter = "corners-center"
	PolicyExplicit         = "explicit"
)

// CornersAndCenter selects the four grid corners followed by the central
// 2x2 block of cells. On the default 6x4 grid this yields
// [0 3 20 23 9 10 13 14].
type CornersAndCenter struct{}

// Name implements [SpeakerPolicy].
func (CornersAndCenter) Name() string { return PolicyCornersAndCenter }

// Select implements [SpeakerPolicy]. Both dimensions must be at least 4 so
// that the central block does not touch a corner.
func (CornersAndCenter) Select(rows, cols int) ([]int, error) {
	if rows < 4 || cols < 4 {
		return nil, fmt.Errorf("%w: %s needs at least a 4x4 grid, got %dx%d",
			ErrInvalidConfig, PolicyCornersAndCenter, rows, cols)
	}

	last := rows - 1
	r0, r1 := rows/2-1, rows/2
	c0, c1 := cols/2-1, cols/2

	return []int{
		0, cols - 1, last * cols, last*cols + cols - 1,
		r0*cols + c0, r0*cols + c1, r1*cols + c0, r1*cols + c1,
	}, nil
}

// Explicit selects a fixed list of grid indices.
type Explicit struct {
	Indices []int
}

// Name implements [SpeakerPolicy].
func (Explicit) Name() string { return PolicyExplicit }

// Select implements [SpeakerPolicy]. Indices must be in range and unique.
func (e Explicit) Select(rows, cols int) ([]int, error) {
	if len(e.Indices) == 0 {
		return nil, fmt.Errorf("%w: explicit speaker list is empty", ErrInvalidConfig)
	}

	n := rows * cols
	seen := make(map[int]bool, len(e.Indices))
	for _, idx := range e.Indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: speaker index %d not in [0,%d)", ErrInvalidConfig, idx, n)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate speaker index %d", ErrInvalidConfig, idx)
		}
		seen[idx] = true
	}

	return append([]int(nil), e.Indices...), nil
}

// PolicyByName resolves a policy from its configuration name. indices is
// only used by the explicit policy.
func PolicyByName(name string, indices []int) (SpeakerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyCornersAndCenter:
		return CornersAndCenter{}, nil
	case PolicyExplicit:
		return Explicit{Indices: append([]int(nil), indices...)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown speaker policy %q (valid: %s)",
			ErrInvalidConfig, name, strings.Join(PolicyNames(), ", "))
	}
}

// PolicyNames lists the known policy names in sorted order.
func PolicyNames() []string {
	names := []string{PolicyCornersAndCenter, PolicyExplicit}
	sort.Strings(names)
	return names
}
