package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func presentOn(families ...int) func(int) bool {
	return func(i int) bool {
		for _, f := range families {
			if f == i {
				return true
			}
		}
		return false
	}
}

func TestSelectQueueFamilies(t *testing.T) {
	graphics := vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit)
	compute := vk.QueueFlags(vk.QueueComputeBit | vk.QueueTransferBit)
	transfer := vk.QueueFlags(vk.QueueTransferBit)

	cases := []struct {
		name    string
		flags   []vk.QueueFlags
		present func(int) bool
		want    QueueFamilyIndices
		ok      bool
	}{
		{
			name:    "single family",
			flags:   []vk.QueueFlags{graphics},
			present: presentOn(0),
			want:    QueueFamilyIndices{Graphics: 0, Present: 0, Transfer: 0},
			ok:      true,
		},
		{
			name:    "dedicated transfer family",
			flags:   []vk.QueueFlags{graphics, compute, transfer},
			present: presentOn(0),
			want:    QueueFamilyIndices{Graphics: 0, Present: 0, Transfer: 2, ExclusiveTransfer: true},
			ok:      true,
		},
		{
			name:    "compute family is not a transfer family",
			flags:   []vk.QueueFlags{graphics, compute},
			present: presentOn(0, 1),
			want:    QueueFamilyIndices{Graphics: 0, Present: 0, Transfer: 0},
			ok:      true,
		},
		{
			name:    "present on a separate family",
			flags:   []vk.QueueFlags{compute, graphics},
			present: presentOn(0),
			want:    QueueFamilyIndices{Graphics: 1, Present: 0, Transfer: 1},
			ok:      true,
		},
		{
			name:    "no graphics",
			flags:   []vk.QueueFlags{compute, transfer},
			present: presentOn(0),
			ok:      false,
		},
		{
			name:    "no present",
			flags:   []vk.QueueFlags{graphics},
			present: presentOn(),
			ok:      false,
		},
		{
			name:  "nil present query",
			flags: []vk.QueueFlags{graphics},
			ok:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := selectQueueFamilies(tc.flags, tc.present)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestQueueFamilyIndicesUnique(t *testing.T) {
	assert.Equal(t, []int{0}, QueueFamilyIndices{Graphics: 0, Present: 0, Transfer: 0}.Unique())
	assert.Equal(t, []int{0, 2}, QueueFamilyIndices{Graphics: 0, Present: 0, Transfer: 2}.Unique())
	assert.Equal(t, []int{1, 0, 2}, QueueFamilyIndices{Graphics: 1, Present: 0, Transfer: 2}.Unique())
	assert.Equal(t, []int{1, 0}, QueueFamilyIndices{Graphics: 1, Present: 0, Transfer: 1}.Unique())
}
