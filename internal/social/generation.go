// Scale-free seeding of the social graph by preferential attachment.
package social

import (
	"slices"

	"github.com/talgya/ideology-sim/internal/agents"
	"github.com/talgya/ideology-sim/internal/entropy"
)

// AttachmentEdges is the number of edges each new node brings to the seed graph.
const AttachmentEdges = 5

// PreferentialAttachment returns the edge list of a Barabási-Albert graph over
// nodes 0..n-1. It starts from a star of m+1 nodes centred on node 0, then each
// further node links to m distinct existing nodes chosen with probability
// proportional to their degree. When n <= m the attachment count drops to
// n-1, so tiny populations get a star and n < 2 gets no edges.
func PreferentialAttachment(n, m int, rng *entropy.Stream) []Link {
	if m >= n {
		m = n - 1
	}
	if m < 1 {
		return nil
	}

	links := make([]Link, 0, m+(n-m-1)*m)
	// Each node appears here once per incident edge.
	repeated := make([]agents.AgentID, 0, 2*cap(links))

	for leaf := 1; leaf <= m; leaf++ {
		links = append(links, Link{Source: 0, Target: agents.AgentID(leaf)})
		repeated = append(repeated, 0, agents.AgentID(leaf))
	}

	for source := m + 1; source < n; source++ {
		targets := distinctDraws(repeated, m, rng)
		src := agents.AgentID(source)
		for _, t := range targets {
			links = append(links, Link{Source: t, Target: src})
			repeated = append(repeated, t, src)
		}
	}
	return links
}

// distinctDraws picks k distinct values from pool, drawing uniformly with
// repetition until k are collected. Returned in ascending order.
func distinctDraws(pool []agents.AgentID, k int, rng *entropy.Stream) []agents.AgentID {
	seen := make(map[agents.AgentID]struct{}, k)
	out := make([]agents.AgentID, 0, k)
	for len(out) < k {
		v := pool[rng.Intn(len(pool))]
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
