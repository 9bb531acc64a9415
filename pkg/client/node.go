package client

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Chain identifies a logical ledger environment. Each chain runs on every
// node but listens on its own port.
type Chain string

const (
	ChainA          Chain = "A" // development chain, odd-month start
	ChainB          Chain = "B" // development chain, even-month start
	ChainProduction Chain = "P"
)

// Port returns the node port serving the chain.
func (c Chain) Port() int {
	switch c {
	case ChainB:
		return 58082
	case ChainProduction:
		return 58080
	default:
		return 58081
	}
}

// ParseChain accepts A, B or P in either case.
func ParseChain(s string) (Chain, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return ChainA, nil
	case "B":
		return ChainB, nil
	case "P":
		return ChainProduction, nil
	}
	return "", fmt.Errorf("unknown chain %q (want A, B or P)", s)
}

// CurrentDevChain returns the development chain with the shortest remaining
// lifetime at t: B in odd months, A in even months.
func CurrentDevChain(t time.Time) Chain {
	if t.Month()%2 == 1 {
		return ChainB
	}
	return ChainA
}

// DefaultNodes are the physically distinct development nodes.
var DefaultNodes = []string{
	"https://node1.connictro-blockchain.de",
	"https://node2.connictro-blockchain.de",
	"https://node3.connictro-blockchain.de",
}

// ChooseNode picks one node for load distribution and returns its endpoint
// for chain. pick selects an index in [0, n); nil uses math/rand. The caller
// pins the result for the lifetime of the session.
func ChooseNode(chain Chain, nodes []string, pick func(n int) int) (string, error) {
	if len(nodes) == 0 {
		return "", fmt.Errorf("client.ChooseNode: no nodes configured")
	}
	if pick == nil {
		pick = rand.IntN
	}
	node := strings.TrimRight(nodes[pick(len(nodes))], ":/")
	return node + ":" + strconv.Itoa(chain.Port()), nil
}
