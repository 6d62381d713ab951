package irstore

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// PairKey identifies one (transmitter, receiver array) pair.
type PairKey struct {
	Tx int
	Rx int
}

// String returns the result key "tx_<i>_rx_<j>".
func (k PairKey) String() string {
	return fmt.Sprintf("tx_%d_rx_%d", k.Tx, k.Rx)
}

// Dir returns the dataset sub-directory "tx_<i>/rx_<j>".
func (k PairKey) Dir() string {
	return filepath.Join(fmt.Sprintf("tx_%d", k.Tx), fmt.Sprintf("rx_%d", k.Rx))
}

// Less orders keys by transmitter, then receiver.
func (k PairKey) Less(o PairKey) bool {
	if k.Tx != o.Tx {
		return k.Tx < o.Tx
	}
	return k.Rx < o.Rx
}

// Compare returns -1, 0 or +1 for use with slices.SortFunc.
func (k PairKey) Compare(o PairKey) int {
	switch {
	case k.Less(o):
		return -1
	case o.Less(k):
		return 1
	default:
		return 0
	}
}

// ParsePairKey parses "tx_<i>_rx_<j>".
func ParsePairKey(s string) (PairKey, error) {
	tx, rest, ok := strings.Cut(s, "_rx_")
	if !ok {
		return PairKey{}, fmt.Errorf("irstore: malformed pair key %q", s)
	}
	txIdx, err := ParseIndexedName(tx, "tx_")
	if err != nil {
		return PairKey{}, err
	}
	rxIdx, err := strconv.Atoi(rest)
	if err != nil || rxIdx < 0 {
		return PairKey{}, fmt.Errorf("irstore: malformed pair key %q", s)
	}
	return PairKey{Tx: txIdx, Rx: rxIdx}, nil
}

// ParseIndexedName parses a directory or file stem such as "tx_3" or
// "ir_000005" with the given prefix and returns the non-negative index.
func ParseIndexedName(name, prefix string) (int, error) {
	digits, ok := strings.CutPrefix(name, prefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("irstore: %q does not match %s<n>", name, prefix)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("irstore: %q does not match %s<n>", name, prefix)
	}
	return n, nil
}

// ChannelFileName returns "ir_<channel:06>.npz".
func ChannelFileName(ch int) string {
	return fmt.Sprintf("ir_%06d.npz", ch)
}
