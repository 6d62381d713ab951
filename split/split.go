// Package split partitions a dataset into train and test sets at array
// granularity: all channel files of one (tx, rx) pair land on the same side.
package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cwbudde/algo-doa/internal/fsutil"
	"github.com/cwbudde/algo-doa/irstore"
)

// ErrInvalidConfig is returned for a ratio outside [0, 1].
var ErrInvalidConfig = errors.New("split: invalid configuration")

// Entry is one array of the dataset with its channel files.
type Entry struct {
	Key   irstore.PairKey
	Files []string
}

// CollectKeys scans root for tx_<i>/rx_<j> directories and returns them in
// key order, each with its sorted .npz files. Directories without files are
// omitted.
func CollectKeys(root string) ([]Entry, error) {
	txDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, txd := range txDirs {
		tx, err := irstore.ParseIndexedName(txd.Name(), "tx_")
		if err != nil || !txd.IsDir() {
			continue
		}
		rxDirs, err := os.ReadDir(filepath.Join(root, txd.Name()))
		if err != nil {
			return nil, err
		}
		for _, rxd := range rxDirs {
			rx, err := irstore.ParseIndexedName(rxd.Name(), "rx_")
			if err != nil || !rxd.IsDir() {
				continue
			}
			dir := filepath.Join(root, txd.Name(), rxd.Name())
			files, err := npzFiles(dir)
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				continue
			}
			out = append(out, Entry{Key: irstore.PairKey{Tx: tx, Rx: rx}, Files: files})
		}
	}
	slices.SortFunc(out, func(a, b Entry) int { return a.Key.Compare(b.Key) })
	return out, nil
}

func npzFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".npz") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// Assignment is a train/test partition of pair keys.
type Assignment struct {
	Train []irstore.PairKey
	Test  []irstore.PairKey
}

// Split sorts keys, shuffles them with a generator seeded by seed and
// assigns the first floor(len(keys)*ratio) to the test set. The result is a
// pure function of the key set, ratio and seed; both sides come back in key
// order.
func Split(keys []irstore.PairKey, ratio float64, seed int64) (Assignment, error) {
	if !(ratio >= 0 && ratio <= 1) {
		return Assignment{}, fmt.Errorf("%w: test ratio %v outside [0, 1]", ErrInvalidConfig, ratio)
	}

	shuffled := slices.Clone(keys)
	slices.SortFunc(shuffled, irstore.PairKey.Compare)
	shuffled = slices.Compact(shuffled)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	nTest := int(math.Floor(float64(len(shuffled)) * ratio))
	a := Assignment{
		Test:  slices.Clone(shuffled[:nTest]),
		Train: slices.Clone(shuffled[nTest:]),
	}
	slices.SortFunc(a.Test, irstore.PairKey.Compare)
	slices.SortFunc(a.Train, irstore.PairKey.Compare)
	return a, nil
}

// Keys returns the keys of entries.
func Keys(entries []Entry) []irstore.PairKey {
	out := make([]irstore.PairKey, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

// Files is the persisted split: file paths per side.
type Files struct {
	Train []string `json:"train"`
	Test  []string `json:"test"`
}

// Expand maps every key of a to the files of its entry.
func Expand(a Assignment, entries []Entry) Files {
	byKey := make(map[irstore.PairKey][]string, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e.Files
	}
	f := Files{Train: []string{}, Test: []string{}}
	for _, k := range a.Train {
		f.Train = append(f.Train, byKey[k]...)
	}
	for _, k := range a.Test {
		f.Test = append(f.Test, byKey[k]...)
	}
	return f
}

// Save writes f to path as JSON in one atomic write.
func (f Files) Save(path string) error {
	return fsutil.WriteJSONAtomic(path, f)
}

// Dataset collects root, splits it and returns the expanded file lists.
func Dataset(root string, ratio float64, seed int64) (Files, Assignment, error) {
	entries, err := CollectKeys(root)
	if err != nil {
		return Files{}, Assignment{}, err
	}
	a, err := Split(Keys(entries), ratio, seed)
	if err != nil {
		return Files{}, Assignment{}, err
	}
	return Expand(a, entries), a, nil
}
