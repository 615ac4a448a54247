package risk

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// ErrModelFit marks a statistical model fit that could not complete. The
// detector recovers from it with a heuristic score; it never aborts an
// analysis.
var ErrModelFit = errors.New("outlier model fit failed")

// OutlierModel is an unsupervised outlier detector fit once per analysis
// request. Score is a decision function where higher means more normal;
// Predict returns true when the point classifies as normal. The interface
// isolates the degenerate single-sample fit so a future multi-period
// historical model can replace it without touching the rule engine or the
// fusion logic.
type OutlierModel interface {
	Fit(samples [][]float64) error
	Score(x []float64) float64
	Predict(x []float64) bool
}

const (
	forestTrees = 100
	forestSeed  = 42
)

// IsolationForest is a deterministic, seeded isolation forest. With two or
// more distinct training samples it behaves conventionally: random axis
// splits, expected-path-length scoring, a contamination-quantile threshold.
// With a single sample (the canonical case here: one feature vector per
// analysis) the fit is degenerate and the decision function falls back to
// a bounded distance-from-the-training-point heuristic. That score is a
// documented heuristic, not a calibrated probability.
type IsolationForest struct {
	Contamination float64

	trees  []*isoNode
	offset float64
	dims   int

	// degenerate fit state
	degenerate bool
	center     []float64
	centerNorm float64
}

// NewIsolationForest creates an unfitted forest with the given
// contamination fraction.
func NewIsolationForest(contamination float64) *IsolationForest {
	return &IsolationForest{Contamination: contamination}
}

// isoNode is one node of an isolation tree.
type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

// Fit trains the forest on the sample matrix. All rows must share the same
// dimensionality.
func (f *IsolationForest) Fit(samples [][]float64) error {
	if len(samples) == 0 || len(samples[0]) == 0 {
		return ErrModelFit
	}
	f.dims = len(samples[0])
	for _, s := range samples {
		if len(s) != f.dims {
			return ErrModelFit
		}
	}

	if allIdentical(samples) {
		f.degenerate = true
		f.center = append([]float64(nil), samples[0]...)
		f.centerNorm = norm(f.center)
		return nil
	}

	rng := rand.New(rand.NewSource(forestSeed))
	maxDepth := int(math.Ceil(math.Log2(float64(len(samples))))) + 1
	f.trees = make([]*isoNode, forestTrees)
	for i := range f.trees {
		f.trees[i] = buildIsoTree(samples, 0, maxDepth, rng)
	}

	// Threshold at the contamination quantile of the training scores, so
	// roughly that fraction of the training set classifies as anomalous.
	scores := make([]float64, len(samples))
	for i, s := range samples {
		scores[i] = f.rawScore(s)
	}
	sort.Float64s(scores)
	idx := int(f.Contamination * float64(len(scores)))
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	f.offset = scores[idx]
	return nil
}

// Score returns the decision-function value for x: positive means more
// normal than the fitted threshold, negative means anomalous.
func (f *IsolationForest) Score(x []float64) float64 {
	if f.degenerate {
		// Distance-from-self heuristic: the training vector itself scores
		// at the positive margin; points score lower as they deviate. The
		// margin shrinks as contamination grows, flagging sooner.
		margin := 0.5 - f.Contamination
		return margin - relativeDistance(x, f.center, f.centerNorm)
	}
	return f.rawScore(x) - f.offset
}

// Predict reports whether x classifies as normal.
func (f *IsolationForest) Predict(x []float64) bool {
	return f.Score(x) >= 0
}

// rawScore is the negated isolation anomaly score, so higher = more normal.
func (f *IsolationForest) rawScore(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree, x, 0)
	}
	avg := total / float64(len(f.trees))
	n := float64(f.trees[0].size)
	anomaly := math.Pow(2, -avg/avgPathLength(n))
	return -anomaly
}

func buildIsoTree(samples [][]float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	node := &isoNode{size: len(samples)}
	if len(samples) <= 1 || depth >= maxDepth {
		return node
	}

	dims := len(samples[0])
	// Pick a random feature with spread; give up after a few tries when
	// every remaining feature is constant.
	for attempt := 0; attempt < dims*2; attempt++ {
		feature := rng.Intn(dims)
		lo, hi := featureRange(samples, feature)
		if hi <= lo {
			continue
		}
		split := lo + rng.Float64()*(hi-lo)
		var left, right [][]float64
		for _, s := range samples {
			if s[feature] < split {
				left = append(left, s)
			} else {
				right = append(right, s)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		node.feature = feature
		node.split = split
		node.left = buildIsoTree(left, depth+1, maxDepth, rng)
		node.right = buildIsoTree(right, depth+1, maxDepth, rng)
		return node
	}
	return node
}

func pathLength(node *isoNode, x []float64, depth float64) float64 {
	if node.left == nil {
		return depth + avgPathLength(float64(node.size))
	}
	if x[node.feature] < node.split {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// avgPathLength is the expected unsuccessful-search path length of a BST
// of n nodes, the standard isolation-forest normalizer.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	const eulerMascheroni = 0.5772156649
	h := math.Log(n-1) + eulerMascheroni
	return 2*h - 2*(n-1)/n
}

func featureRange(samples [][]float64, feature int) (lo, hi float64) {
	lo, hi = samples[0][feature], samples[0][feature]
	for _, s := range samples[1:] {
		v := s[feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func allIdentical(samples [][]float64) bool {
	first := samples[0]
	for _, s := range samples[1:] {
		for i, v := range s {
			if v != first[i] {
				return false
			}
		}
	}
	return true
}

func norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// relativeDistance is the euclidean distance between x and center, scaled
// by the center's magnitude so the score stays bounded for large vectors.
func relativeDistance(x, center []float64, centerNorm float64) float64 {
	var sum float64
	for i := range center {
		var xi float64
		if i < len(x) {
			xi = x[i]
		}
		d := xi - center[i]
		sum += d * d
	}
	return math.Sqrt(sum) / (1 + centerNorm)
}
