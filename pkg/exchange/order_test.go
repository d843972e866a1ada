package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mash-protocol/mash-logic/pkg/device"
)

func TestVisitOrder(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		links map[device.ID][]device.ID
		want  []device.ID
	}{
		{
			name: "no links keeps declaration order",
			n:    3,
			want: []device.ID{0, 1, 2},
		},
		{
			name:  "chain declared backwards",
			n:     3,
			links: map[device.ID][]device.ID{2: {1}, 1: {0}},
			want:  []device.ID{2, 1, 0},
		},
		{
			name:  "diamond uses lowest ready id",
			n:     4,
			links: map[device.ID][]device.ID{3: {1, 2}, 1: {0}, 2: {0}},
			want:  []device.ID{3, 1, 2, 0},
		},
		{
			name:  "cycle appended in declaration order",
			n:     4,
			links: map[device.ID][]device.ID{0: {1}, 1: {0}, 3: {0}},
			want:  []device.ID{2, 3, 0, 1},
		},
		{
			name:  "self loop",
			n:     2,
			links: map[device.ID][]device.ID{1: {1}},
			want:  []device.ID{0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visitOrder(tt.n, tt.links))
		})
	}
}
