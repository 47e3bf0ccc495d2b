package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Split partitions row indices into a training and a held-out set. The test
// share is ceil(n*testSize) rows, drawn by a seeded shuffle so the same seed
// always yields the same partition.
func Split(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be within (0,1), got %g", testSize)
	}
	nTest := int(math.Ceil(float64(n) * testSize))
	if n < 2 || nTest >= n {
		return nil, nil, fmt.Errorf("cannot split %d rows with test size %g", n, testSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
