package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorBinding is one binding of a descriptor set layout, its index is
// its position in the builder
type DescriptorBinding struct {
	Type   vk.DescriptorType
	Stages vk.ShaderStageFlags
}

// DescriptorBuilder collects bindings and builds a Descriptor holding a
// layout, a pool and SetsPerPool sets of that layout
type DescriptorBuilder struct {
	setsPerPool int
	bindings    []DescriptorBinding
	consumed    bool
}

func NewDescriptorBuilder(setsPerPool int) *DescriptorBuilder {
	if setsPerPool < 1 {
		setsPerPool = 1
	}
	return &DescriptorBuilder{setsPerPool: setsPerPool}
}

// AddBinding appends a binding, it gets the next binding index
func (b *DescriptorBuilder) AddBinding(dtype vk.DescriptorType, stages vk.ShaderStageFlags) *DescriptorBuilder {
	b.bindings = append(b.bindings, DescriptorBinding{Type: dtype, Stages: stages})
	return b
}

// setLayout describes one layout binding per builder binding, numbered in order
func setLayout(bindings []DescriptorBinding) *DescriptorSetLayout {
	layout := &DescriptorSetLayout{}
	for i, b := range bindings {
		layout.AddBinding(vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  b.Type,
			DescriptorCount: 1,
			StageFlags:      b.Stages,
		})
	}
	return layout
}

// poolSizes reserves one descriptor per binding for each set of the pool
func poolSizes(bindings []DescriptorBinding, setsPerPool int) []vk.DescriptorPoolSize {
	ret := make([]vk.DescriptorPoolSize, len(bindings))
	for i, b := range bindings {
		ret[i] = vk.DescriptorPoolSize{
			Type:            b.Type,
			DescriptorCount: uint32(setsPerPool),
		}
	}
	return ret
}

func prepareWrites(bindings []DescriptorBinding) []vk.WriteDescriptorSet {
	ret := make([]vk.WriteDescriptorSet, len(bindings))
	for i, b := range bindings {
		ret[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstBinding:      uint32(i),
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  b.Type,
		}
	}
	return ret
}

// Build creates the layout, pool and sets and consumes the builder. Whatever
// was created before a failing step is destroyed.
func (b *DescriptorBuilder) Build(device *Device) (*Descriptor, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}

	layout := setLayout(b.bindings)
	if err := device.CreateDescriptorSetLayout(layout); err != nil {
		return nil, err
	}

	pool := &DescriptorPool{VKDescriptorPoolSize: poolSizes(b.bindings, b.setsPerPool)}
	if err := device.CreateDescriptorPool(pool, b.setsPerPool); err != nil {
		layout.Destroy()
		return nil, err
	}

	sets, err := pool.Allocate(layout, b.setsPerPool)
	if err != nil {
		pool.Destroy()
		layout.Destroy()
		return nil, err
	}

	d := &Descriptor{
		device:   device,
		layout:   layout,
		pool:     pool,
		sets:     sets,
		bindings: b.bindings,
		writes:   prepareWrites(b.bindings),
	}
	*b = DescriptorBuilder{consumed: true}
	return d, nil
}

// Descriptor owns a layout, a pool and the sets allocated from it, plus one
// staged write per binding
type Descriptor struct {
	device   *Device
	layout   *DescriptorSetLayout
	pool     *DescriptorPool
	sets     []vk.DescriptorSet
	bindings []DescriptorBinding
	writes   []vk.WriteDescriptorSet
}

func (d *Descriptor) checkBinding(binding int) error {
	if binding < 0 || binding >= len(d.writes) {
		return errors.Wrapf(ErrBindingOutOfRange, "binding %d of %d", binding, len(d.writes))
	}
	return nil
}

// WriteBuffer stages a buffer for binding
func (d *Descriptor) WriteBuffer(binding int, info vk.DescriptorBufferInfo) error {
	if err := d.checkBinding(binding); err != nil {
		return err
	}
	d.writes[binding].PBufferInfo = []vk.DescriptorBufferInfo{info}
	d.writes[binding].PImageInfo = nil
	return nil
}

// WriteImage stages an image, and sampler for combined bindings, for binding
func (d *Descriptor) WriteImage(binding int, info vk.DescriptorImageInfo) error {
	if err := d.checkBinding(binding); err != nil {
		return err
	}
	d.writes[binding].PImageInfo = []vk.DescriptorImageInfo{info}
	d.writes[binding].PBufferInfo = nil
	return nil
}

// broadcastWrites returns, for each set, a copy of writes targeting that set
func broadcastWrites(writes []vk.WriteDescriptorSet, sets []vk.DescriptorSet) [][]vk.WriteDescriptorSet {
	ret := make([][]vk.WriteDescriptorSet, len(sets))
	for i, set := range sets {
		w := make([]vk.WriteDescriptorSet, len(writes))
		copy(w, writes)
		for j := range w {
			w[j].DstSet = set
		}
		ret[i] = w
	}
	return ret
}

// staged returns the writes which have a buffer or image attached
func (d *Descriptor) staged() []vk.WriteDescriptorSet {
	ret := make([]vk.WriteDescriptorSet, 0, len(d.writes))
	for _, w := range d.writes {
		if len(w.PBufferInfo) > 0 || len(w.PImageInfo) > 0 {
			ret = append(ret, w)
		}
	}
	return ret
}

// UpdateDescriptorSets writes the staged writes identically into every set.
// Bindings with nothing staged are left untouched.
func (d *Descriptor) UpdateDescriptorSets() {
	for _, w := range broadcastWrites(d.staged(), d.sets) {
		if len(w) == 0 {
			continue
		}
		vk.UpdateDescriptorSets(d.device.VKDevice, uint32(len(w)), w, 0, nil)
	}
}

func (d *Descriptor) Layout() *DescriptorSetLayout { return d.layout }

func (d *Descriptor) Sets() []vk.DescriptorSet { return d.sets }

func (d *Descriptor) Set(i int) vk.DescriptorSet { return d.sets[i] }

func (d *Descriptor) Bindings() []DescriptorBinding { return d.bindings }

// Destroy destroys the pool, freeing the sets, then the layout
func (d *Descriptor) Destroy() {
	if d.pool != nil {
		d.pool.Destroy()
		d.pool = nil
	}
	if d.layout != nil {
		d.layout.Destroy()
		d.layout = nil
	}
	d.sets = nil
}
