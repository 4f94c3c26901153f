package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

type feedKind int

const (
	feedNone feedKind = iota
	feedTeam
	feedWinner
	feedLoser
)

// feed - источник слота: команда из посева, победитель или проигравший другого узла.
type feed struct {
	kind   feedKind
	teamID int
	node   *node
}

func teamFeed(id int) feed {
	return feed{kind: feedTeam, teamID: id}
}

func winnerOf(n *node) feed {
	return feed{kind: feedWinner, node: n}
}

func loserOf(n *node) feed {
	return feed{kind: feedLoser, node: n}
}

func (f feed) isEmpty() bool {
	return f.kind == feedNone
}

func (f feed) resolve() feed {
	switch f.kind {
	case feedWinner:
		return f.node.winner
	case feedLoser:
		return f.node.loser
	}
	return f
}

type node struct {
	uid         string
	round       int
	position    int
	bracketType models.BracketType
	inputs      [2]feed

	match  *BracketMatch
	winner feed
	loser  feed
}

// graph holds elimination nodes in dependency order.
type graph struct {
	nodes []*node
}

func (g *graph) add(n *node) *node {
	g.nodes = append(g.nodes, n)
	return n
}

// resolve materializes every node with two live inputs. A node with a single live
// input passes it through untouched, so byes never produce a match row.
func (g *graph) resolve() []*BracketMatch {
	matches := make([]*BracketMatch, 0, len(g.nodes))
	for _, n := range g.nodes {
		live := make([]feed, 0, 2)
		for _, in := range n.inputs {
			if r := in.resolve(); !r.isEmpty() {
				live = append(live, r)
			}
		}

		switch len(live) {
		case 0:
		case 1:
			n.winner = live[0]
		default:
			bm := &BracketMatch{
				UID:         n.uid,
				Round:       n.round,
				Position:    n.position,
				BracketType: n.bracketType,
			}
			for i, f := range live {
				slot := i + 1
				switch f.kind {
				case feedTeam:
					if slot == models.SlotTeam1 {
						bm.Team1ID = intPtr(f.teamID)
					} else {
						bm.Team2ID = intPtr(f.teamID)
					}
				case feedWinner:
					f.node.match.WinnerTo = &SlotRef{UID: n.uid, Slot: slot}
				case feedLoser:
					f.node.match.LoserTo = &SlotRef{UID: n.uid, Slot: slot}
				}
			}
			n.match = bm
			n.winner = winnerOf(n)
			n.loser = loserOf(n)
			matches = append(matches, bm)
		}
	}
	return matches
}

func bracketSize(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

func log2(size int) int {
	r := 0
	for size > 1 {
		size >>= 1
		r++
	}
	return r
}

// seedingChart returns seed numbers by bracket line so that seed 1 meets the lowest seed,
// e.g. size 8 gives 1,8,4,5,2,7,3,6.
func seedingChart(size int) []int {
	order := []int{1}
	for len(order) < size {
		n := len(order) * 2
		next := make([]int, 0, n)
		for _, s := range order {
			next = append(next, s, n+1-s)
		}
		order = next
	}
	return order
}

func firstRoundSlots(ids []int, size int, placement models.ByePlacement) []feed {
	slots := make([]feed, size)
	if placement == models.ByePlacementEvenStep {
		byes := size - len(ids)
		isBye := make([]bool, size)
		for i := 0; i < byes; i++ {
			isBye[i*size/byes] = true
		}
		next := 0
		for pos := range slots {
			if isBye[pos] {
				continue
			}
			slots[pos] = teamFeed(ids[next])
			next++
		}
		return slots
	}

	for pos, seed := range seedingChart(size) {
		if seed <= len(ids) {
			slots[pos] = teamFeed(ids[seed-1])
		}
	}
	return slots
}

// buildEliminationTree adds a full knockout tree to g and returns its nodes by round.
func buildEliminationTree(g *graph, ids []int, bt models.BracketType, prefix string, placement models.ByePlacement) [][]*node {
	size := bracketSize(len(ids))
	slots := firstRoundSlots(ids, size, placement)
	rounds := log2(size)

	tree := make([][]*node, 0, rounds)
	for r := 1; r <= rounds; r++ {
		count := size >> r
		row := make([]*node, count)
		for k := 0; k < count; k++ {
			n := &node{
				uid:         fmt.Sprintf("%sR%dM%d", prefix, r, k+1),
				round:       r,
				position:    k + 1,
				bracketType: bt,
			}
			if r == 1 {
				n.inputs = [2]feed{slots[2*k], slots[2*k+1]}
			} else {
				prev := tree[r-2]
				n.inputs = [2]feed{winnerOf(prev[2*k]), winnerOf(prev[2*k+1])}
			}
			row[k] = g.add(n)
		}
		tree = append(tree, row)
	}
	return tree
}
