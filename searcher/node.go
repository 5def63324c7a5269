package searcher

import (
	"math"

	"checkers/game"

	"golang.org/x/exp/rand"
)

const noParent int32 = -1

// node is an entry of a tree's arena. Values are accumulated from the
// perspective of mover, the player who made the move into the node.
type node struct {
	state    game.State
	move     game.Move
	index    int // Position of move in the parent's legal moves
	parent   int32
	mover    game.Color
	moves    []game.Move
	untried  []int // Indices into moves
	children []int32
	visits   int
	value    float64
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.value / float64(n.visits)
}

// tree stores nodes in a slice and links them by index. The root is at 0.
type tree struct {
	nodes []node
}

func newTree(state game.State) *tree {
	t := &tree{nodes: make([]node, 0, 64)}
	t.add(noParent, game.Move{}, -1, state.Turn().Opponent(), state)
	return t
}

func (t *tree) root() *node {
	return &t.nodes[0]
}

func (t *tree) size() int {
	return len(t.nodes)
}

func (t *tree) add(parent int32, move game.Move, index int, mover game.Color, state game.State) int32 {
	outcome, moves := state.Status()
	if outcome != game.Ongoing {
		moves = nil
	}
	untried := make([]int, len(moves))
	for i := range untried {
		untried[i] = i
	}

	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{
		state:   state,
		move:    move,
		index:   index,
		parent:  parent,
		mover:   mover,
		moves:   moves,
		untried: untried,
	})
	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id
}

// selectThenExpand descends by UCB1 until it reaches a node with untried
// moves, which it expands, or a terminal node, which it returns.
func (t *tree) selectThenExpand(c float64, rng *rand.Rand) int32 {
	id := int32(0)
	for {
		n := &t.nodes[id]
		if len(n.untried) > 0 {
			return t.expand(id, rng)
		}
		if len(n.children) == 0 {
			return id
		}
		id = t.pickChild(id, c)
	}
}

// expand adds the child of a random untried move.
func (t *tree) expand(id int32, rng *rand.Rand) int32 {
	n := &t.nodes[id]
	i := rng.Intn(len(n.untried))
	index := n.untried[i]
	last := len(n.untried) - 1
	n.untried[i] = n.untried[last]
	n.untried = n.untried[:last]

	move := n.moves[index]
	state := n.state
	return t.add(id, move, index, state.Turn(), state.Play(move))
}

func (t *tree) pickChild(id int32, c float64) int32 {
	n := &t.nodes[id]
	if n.visits == 0 {
		panic("node has children but no visits")
	}
	policy := newUCT(c, float64(n.visits))

	best := n.children[0]
	bestScore := math.Inf(-1)
	for _, child := range n.children {
		ch := &t.nodes[child]
		score := policy.evaluate(ch.value, float64(ch.visits))
		if score > bestScore {
			best, bestScore = child, score
		}
	}
	return best
}

// backup adds reward, given from the root player's perspective, to every
// node from id up to the root.
func (t *tree) backup(id int32, reward float64, rootPlayer game.Color) {
	for id != noParent {
		n := &t.nodes[id]
		n.visits++
		if n.mover == rootPlayer {
			n.value += reward
		} else {
			n.value -= reward
		}
		id = n.parent
	}
}

// find returns the node holding state among the first plies below the root.
func (t *tree) find(state game.State, plies int) (int32, bool) {
	limit := t.root().state.Ply() + plies
	queue := []int32{0}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := &t.nodes[id]
		if n.state == state {
			return id, true
		}
		if n.state.Ply() >= limit {
			continue
		}
		queue = append(queue, n.children...)
	}
	return 0, false
}

// reroot builds a new tree from the subtree under id.
func (t *tree) reroot(id int32) *tree {
	rerooted := &tree{nodes: make([]node, 0, len(t.nodes))}
	var copySubtree func(from int32, parent int32)
	copySubtree = func(from int32, parent int32) {
		n := t.nodes[from]
		n.parent = parent
		n.untried = append([]int(nil), n.untried...)
		children := n.children
		n.children = nil

		to := int32(len(rerooted.nodes))
		rerooted.nodes = append(rerooted.nodes, n)
		if parent != noParent {
			rerooted.nodes[parent].children = append(rerooted.nodes[parent].children, to)
		}
		for _, child := range children {
			copySubtree(child, to)
		}
	}
	copySubtree(id, noParent)
	rerooted.nodes[0].index = -1
	return rerooted
}

// better reports whether a root child beats the best one so far: more
// visits, then a higher mean, then a lower legal move index.
func better(visits int, mean float64, index int, bestVisits int, bestMean float64, bestIndex int) bool {
	if visits != bestVisits {
		return visits > bestVisits
	}
	if mean != bestMean {
		return mean > bestMean
	}
	return index < bestIndex
}
