package physics

import (
	"fmt"
	"math"
)

// ColliderKey addresses a leaf inside a hierarchy of composite colliders. It
// is a stack of fixed width sub keys stored most significant bits first.
// Unused low bits are ones, so an untouched key is all ones.
type ColliderKey struct {
	Value uint32
}

var ColliderKeyEmpty = ColliderKey{Value: math.MaxUint32}

// NewColliderKey returns a key holding a single sub key.
func NewColliderKey(numSubKeyBits int, subKey uint32) ColliderKey {
	key := ColliderKeyEmpty
	key.PushSubKey(numSubKeyBits, subKey)
	return key
}

func (k ColliderKey) IsEmpty() bool {
	return k.Value == ColliderKeyEmpty.Value
}

func (k ColliderKey) String() string {
	return fmt.Sprintf("ColliderKey(%#08x)", k.Value)
}

// PushSubKey inserts subKey, truncated to numSubKeyBits, at the most
// significant end and shifts the existing sub keys down. Pushing more than 32
// bits in total drops the lowest bits of the key, which belong to the
// earliest pushed sub key.
func (k *ColliderKey) PushSubKey(numSubKeyBits int, subKey uint32) {
	parentPart := uint32(uint64(subKey) << (32 - numSubKeyBits))
	childPart := uint32(uint64(k.Value) >> numSubKeyBits)
	k.Value = parentPart | childPart
}

// PopSubKey removes numSubKeyBits from the most significant end and refills
// the low bits with ones. It reports false, leaving the key untouched, once
// the key is empty.
func (k *ColliderKey) PopSubKey(numSubKeyBits int) (uint32, bool) {
	if k.Value == ColliderKeyEmpty.Value {
		return math.MaxUint32, false
	}
	subKey := uint32(uint64(k.Value) >> (32 - numSubKeyBits))
	k.Value = uint32((uint64(1+uint64(k.Value)) << numSubKeyBits) - 1)
	return subKey, true
}

// ColliderKeyPath is a ColliderKey under construction, together with the
// number of high bits that have already been assigned.
type ColliderKeyPath struct {
	key        ColliderKey
	numKeyBits int
}

var ColliderKeyPathEmpty = ColliderKeyPath{key: ColliderKeyEmpty}

func NewColliderKeyPath(key ColliderKey, numKeyBits int) ColliderKeyPath {
	return ColliderKeyPath{key: key, numKeyBits: numKeyBits}
}

func (p ColliderKeyPath) Key() ColliderKey {
	return p.key
}

func (p ColliderKeyPath) NumKeyBits() int {
	return p.numKeyBits
}

// PushChildKey appends the assigned bits of child below the bits already in p.
func (p *ColliderKeyPath) PushChildKey(child ColliderKeyPath) {
	mask := (uint64(child.key.Value) >> p.numKeyBits) | (uint64(math.MaxUint32) << (32 - p.numKeyBits))
	p.key.Value &= uint32(mask)
	p.numKeyBits += child.numKeyBits
}

// PopChildKey forgets the last numChildKeyBits assigned bits.
func (p *ColliderKeyPath) PopChildKey(numChildKeyBits int) {
	p.numKeyBits -= numChildKeyBits
	p.key.Value |= uint32(uint64(math.MaxUint32) >> p.numKeyBits)
}

// GetLeafKey returns the absolute key of a leaf whose key local to the
// current composite is leafKeyLocal.
func (p ColliderKeyPath) GetLeafKey(leafKeyLocal ColliderKey) ColliderKey {
	leaf := p
	leaf.PushChildKey(ColliderKeyPath{key: leafKeyLocal})
	return leaf.key
}

// ColliderKeyPair names one leaf in each of two colliders.
type ColliderKeyPair struct {
	ColliderKeyA ColliderKey
	ColliderKeyB ColliderKey
}

var ColliderKeyPairEmpty = ColliderKeyPair{ColliderKeyEmpty, ColliderKeyEmpty}
