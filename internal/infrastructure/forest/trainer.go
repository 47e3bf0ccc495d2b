package forest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// Config holds the ensemble hyper-parameters.
type Config struct {
	Trees           int    // number of trees, default 100
	MaxDepth        int    // 0 grows trees until leaves are pure
	MinSamplesSplit int    // default 2
	MaxFeatures     int    // features tried per split, 0 = sqrt(features)
	Seed            uint64 // default 42
	Workers         int    // trees grown in parallel, default 1
}

// DefaultConfig mirrors the reference training setup: 100 trees, seed 42.
func DefaultConfig() Config {
	return Config{Trees: 100, MinSamplesSplit: 2, Seed: 42, Workers: 1}
}

// Trainer fits random forests. Every tree draws from its own generator
// seeded by (Seed, tree index), so results do not depend on Workers.
type Trainer struct {
	cfg    Config
	logger *slog.Logger
}

// NewTrainer creates a Trainer, filling unset hyper-parameters with defaults.
func NewTrainer(cfg Config, logger *slog.Logger) *Trainer {
	def := DefaultConfig()
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = def.MinSamplesSplit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Trainer{cfg: cfg, logger: logger}
}

// Fit grows the ensemble. Cancellation is checked before each tree.
func (t *Trainer) Fit(ctx context.Context, X [][]float64, y []int) (model.Predictor, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot fit forest on an empty matrix")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("matrix has %d rows but %d labels", len(X), len(y))
	}
	features := len(X[0])
	for i, row := range X {
		if len(row) != features {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), features)
		}
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("label at row %d must be 0 or 1, got %d", i, label)
		}
	}

	maxFeatures := t.cfg.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > features {
		maxFeatures = max(1, int(math.Sqrt(float64(features))))
	}

	trees := make([]Tree, t.cfg.Trees)
	importances := make([][]float64, t.cfg.Trees)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.Workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := &builder{
				X:           X,
				y:           y,
				rng:         rand.New(rand.NewPCG(t.cfg.Seed, uint64(i))),
				maxDepth:    t.cfg.MaxDepth,
				minSplit:    t.cfg.MinSamplesSplit,
				maxFeatures: maxFeatures,
				importance:  make([]float64, features),
			}
			trees[i] = b.grow()
			importances[i] = b.normalizedImportance()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forest training interrupted: %w", err)
	}

	f := &Forest{
		Trees:       trees,
		Features:    features,
		Importances: averageImportance(importances, features),
	}
	t.logger.Debug("forest fitted", "trees", len(trees), "rows", len(X), "max_features", maxFeatures)
	return f, nil
}

func averageImportance(perTree [][]float64, features int) []float64 {
	avg := make([]float64, features)
	for _, imp := range perTree {
		for j, v := range imp {
			avg[j] += v
		}
	}
	total := 0.0
	for _, v := range avg {
		total += v
	}
	if total == 0 {
		return avg
	}
	for j := range avg {
		avg[j] /= total
	}
	return avg
}

// builder grows a single tree on a bootstrap sample.
type builder struct {
	X           [][]float64
	y           []int
	rng         *rand.Rand
	maxDepth    int
	minSplit    int
	maxFeatures int
	nodes       []Node
	importance  []float64
	total       float64
}

func (b *builder) grow() Tree {
	n := len(b.X)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = b.rng.IntN(n)
	}
	b.total = float64(n)
	b.build(sample, 0)
	return Tree{Nodes: b.nodes}
}

func (b *builder) normalizedImportance() []float64 {
	total := 0.0
	for _, v := range b.importance {
		total += v
	}
	if total > 0 {
		for j := range b.importance {
			b.importance[j] /= total
		}
	}
	return b.importance
}

func (b *builder) counts(sample []int) [2]float64 {
	var c [2]float64
	for _, i := range sample {
		c[b.y[i]]++
	}
	return c
}

// build appends the subtree for sample and returns its root index.
func (b *builder) build(sample []int, depth int) int {
	counts := b.counts(sample)
	n := float64(len(sample))
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leaf, Value: [2]float64{counts[0] / n, counts[1] / n}})

	if counts[0] == 0 || counts[1] == 0 ||
		len(sample) < b.minSplit ||
		(b.maxDepth > 0 && depth >= b.maxDepth) {
		return idx
	}

	s, ok := b.bestSplit(sample, counts)
	if !ok {
		return idx
	}

	var left, right []int
	for _, i := range sample {
		if b.X[i][s.feature] <= s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.importance[s.feature] += n / b.total * s.gain

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx] = Node{Feature: s.feature, Threshold: s.threshold, Left: l, Right: r, Value: b.nodes[idx].Value}
	return idx
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit draws features in random order and evaluates them until
// maxFeatures non-constant features have been tried.
func (b *builder) bestSplit(sample []int, counts [2]float64) (split, bool) {
	parent := gini(counts)
	n := float64(len(sample))
	order := b.rng.Perm(len(b.X[0]))

	best := split{gain: 0}
	found := false
	tried := 0
	sorted := make([]int, len(sample))

	for _, f := range order {
		if tried >= b.maxFeatures {
			break
		}
		copy(sorted, sample)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })
		if b.X[sorted[0]][f] == b.X[sorted[len(sorted)-1]][f] {
			continue
		}
		tried++

		var left [2]float64
		right := counts
		for k := 0; k < len(sorted)-1; k++ {
			cls := b.y[sorted[k]]
			left[cls]++
			right[cls]--

			v, next := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if v == next {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			gain := parent - nl/n*gini(left) - nr/n*gini(right)
			if gain > best.gain {
				threshold := v + (next-v)/2
				if threshold == next {
					threshold = v
				}
				best = split{feature: f, threshold: threshold, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

func gini(c [2]float64) float64 {
	n := c[0] + c[1]
	if n == 0 {
		return 0
	}
	p0, p1 := c[0]/n, c[1]/n
	return 1 - p0*p0 - p1*p1
}
