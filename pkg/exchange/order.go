package exchange

import (
	"slices"

	"github.com/mash-protocol/mash-logic/pkg/device"
)

// visitOrder returns the device IDs of n devices in topological order of
// links. Ready devices are taken lowest ID first. Devices left on cycles are
// appended in ID order.
func visitOrder(n int, links map[device.ID][]device.ID) []device.ID {
	indegree := make([]int, n)
	for _, to := range links {
		for _, id := range to {
			indegree[id]++
		}
	}

	var ready []device.ID
	for id := range n {
		if indegree[id] == 0 {
			ready = append(ready, device.ID(id))
		}
	}

	order := make([]device.ID, 0, n)
	placed := make([]bool, n)
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		placed[id] = true

		for _, next := range links[id] {
			indegree[next]--
			if indegree[next] == 0 {
				pos, _ := slices.BinarySearch(ready, next)
				ready = slices.Insert(ready, pos, next)
			}
		}
	}

	for id := range n {
		if !placed[id] {
			order = append(order, device.ID(id))
		}
	}
	return order
}
