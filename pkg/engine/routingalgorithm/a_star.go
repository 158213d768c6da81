package routingalgorithm

import (
	"fmt"
	"math"
	"time"

	"lintang/astarx/pkg/datastructure"
	"lintang/astarx/pkg/util"

	"github.com/rs/zerolog"
)

// AStarGraph graph yang bisa di solve A*. Neighbors boleh dihitung on demand (implicit graph).
// EstimatedDistanceToGoal harus admissible & consistent supaya path yang dihasilkan optimal,
// solver tidak mengecek ini.
type AStarGraph[V comparable] interface {
	Neighbors(v V) []datastructure.WeightedEdge[V]
	EstimatedDistanceToGoal(v, goal V) float64
}

type SolverOutcome int

const (
	Solved SolverOutcome = iota
	Unsolvable
	Timeout
)

func (o SolverOutcome) String() string {
	switch o {
	case Solved:
		return "SOLVED"
	case Unsolvable:
		return "UNSOLVABLE"
	case Timeout:
		return "TIMEOUT"
	default:
		return fmt.Sprintf("SolverOutcome(%d)", int(o))
	}
}

// SolveResult hasil satu kali A*. Path & Weight hanya valid kalau Outcome == Solved.
type SolveResult[V comparable] struct {
	Outcome           SolverOutcome
	Path              []V
	Weight            float64
	NumStatesExplored int
	ExplorationTime   time.Duration
}

type Option func(*options)

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

// WithClock ganti sumber waktu untuk pengecekan timeout
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

type AStar[V comparable] struct {
	graph AStarGraph[V]
	opts  options
}

func NewAStar[V comparable](g AStarGraph[V], opts ...Option) *AStar[V] {
	o := options{
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &AStar[V]{graph: g, opts: o}
}

// Solve shortcut NewAStar(g).ShortestPath(...)
func Solve[V comparable](g AStarGraph[V], start, goal V, timeout time.Duration) SolveResult[V] {
	return NewAStar(g).ShortestPath(start, goal, timeout)
}

func TimeoutFromSeconds(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// search state untuk satu kali solve, dibuang setelah selesai
type searchState[V comparable] struct {
	distTo map[V]float64
	edgeTo map[V]V
	closed map[V]struct{}
	pq     *datastructure.MinHeap[V]
}

// ShortestPath A* dari start ke goal. timeout dicek di awal setiap iterasi (sebelum extractMin),
// jadi satu kali ekspansi neighbor tidak pernah dipotong di tengah.
// https://theory.stanford.edu/~amitp/GameProgramming/ImplementationNotes.html
func (a *AStar[V]) ShortestPath(start, goal V, timeout time.Duration) SolveResult[V] {
	begin := a.opts.now()
	elapsed := func() time.Duration { return a.opts.now().Sub(begin) }

	if start == goal {
		return a.done(SolveResult[V]{
			Outcome:         Solved,
			Path:            []V{start},
			Weight:          0,
			ExplorationTime: elapsed(),
		})
	}

	st := &searchState[V]{
		distTo: map[V]float64{start: 0},
		edgeTo: make(map[V]V),
		closed: make(map[V]struct{}),
		pq:     datastructure.NewMinHeap[V](),
	}
	mustHeap(st.pq.Insert(start, a.graph.EstimatedDistanceToGoal(start, goal)))

	numStates := 0
	for !st.pq.IsEmpty() {
		if spent := elapsed(); spent >= timeout {
			return a.done(SolveResult[V]{
				Outcome:           Timeout,
				NumStatesExplored: numStates,
				ExplorationTime:   spent,
			})
		}

		node, err := st.pq.ExtractMin()
		mustHeap(err)
		u := node.Item
		st.closed[u] = struct{}{}

		if u == goal {
			return a.done(SolveResult[V]{
				Outcome:           Solved,
				Path:              st.reconstructPath(start, goal),
				Weight:            st.distTo[u],
				NumStatesExplored: numStates,
				ExplorationTime:   elapsed(),
			})
		}

		numStates++
		for _, edge := range a.graph.Neighbors(u) {
			if _, ok := st.closed[edge.To]; ok {
				continue
			}
			if _, ok := st.distTo[edge.To]; !ok {
				st.distTo[edge.To] = math.Inf(1)
				st.edgeTo[edge.To] = u
			}
			a.relax(st, u, edge, goal)
		}
	}

	return a.done(SolveResult[V]{
		Outcome:           Unsolvable,
		NumStatesExplored: numStates,
		ExplorationTime:   elapsed(),
	})
}

// relax edge u -> v. kalau lewat u lebih dekat, update distTo, edgeTo, dan rank v di pq.
func (a *AStar[V]) relax(st *searchState[V], u V, edge datastructure.WeightedEdge[V], goal V) {
	v := edge.To
	candidate := st.distTo[u] + edge.Weight
	if candidate >= st.distTo[v] {
		return
	}
	st.distTo[v] = candidate
	st.edgeTo[v] = u

	priority := candidate + a.graph.EstimatedDistanceToGoal(v, goal)
	if !st.pq.Contains(v) {
		mustHeap(st.pq.Insert(v, priority))
	} else {
		mustHeap(st.pq.ChangePriority(v, priority))
	}
}

func (st *searchState[V]) reconstructPath(start, goal V) []V {
	path := []V{goal}
	for curr := goal; curr != start; {
		curr = st.edgeTo[curr]
		path = append(path, curr)
	}
	util.ReverseG(path)
	return path
}

func (a *AStar[V]) done(res SolveResult[V]) SolveResult[V] {
	a.opts.logger.Debug().
		Str("outcome", res.Outcome.String()).
		Int("states_explored", res.NumStatesExplored).
		Int("path_len", len(res.Path)).
		Float64("weight", res.Weight).
		Dur("elapsed", res.ExplorationTime).
		Msg("a* finished")
	return res
}

// mustHeap error dari heap di sini berarti pos map dan array sudah tidak sinkron, bug bukan input.
func mustHeap(err error) {
	if err != nil {
		panic(fmt.Sprintf("routingalgorithm: priority queue out of sync: %v", err))
	}
}
