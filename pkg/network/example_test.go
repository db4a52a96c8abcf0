package network_test

import (
	"fmt"
	"time"

	"github.com/matzehuels/gitnetwork/pkg/network"
)

func ExampleCompute() {
	at := func(min int) time.Time { return time.Date(2024, 1, 1, 0, min, 0, 0, time.UTC) }

	// Newest first: C merges feature tip P2 into P1.
	history := []network.Commit{
		{ID: "C", ParentIDs: []string{"P1", "P2"}, CommittedAt: at(4)},
		{ID: "P1", ParentIDs: []string{"R"}, CommittedAt: at(3)},
		{ID: "P2", ParentIDs: []string{"R"}, CommittedAt: at(2)},
		{ID: "R", CommittedAt: at(1)},
	}
	refs := network.RefMap{"C": {"main"}}

	g, err := network.Compute(network.SelectWindow(history, "", 0), refs, network.Options{PrimaryRef: "main"})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for t := g.Len() - 1; t >= 0; t-- {
		n := g.At(t)
		lane, _ := n.PrimaryLane()
		fmt.Println(n.ID, "time", n.Time, "lane", lane, "edges", n.ParentLanes)
	}
	// Output:
	// C time 3 lane 1 edges [{P1 1} {P2 3}]
	// P1 time 2 lane 1 edges [{R 1}]
	// P2 time 1 lane 3 edges [{R 3}]
	// R time 0 lane 1 edges []
}

func ExampleSelectWindow() {
	var history []network.Commit
	for i := 9; i >= 0; i-- {
		history = append(history, network.Commit{ID: fmt.Sprintf("c%d", i)})
	}

	window := network.SelectWindow(history, "c4", 4)
	for _, c := range window {
		fmt.Print(c.ID, " ")
	}
	fmt.Println()
	// Output:
	// c6 c5 c4 c3
}
