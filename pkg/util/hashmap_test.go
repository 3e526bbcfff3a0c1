package util

import "testing"

// key is a deliberately collision-prone Hasher.
type key struct {
	name string
}

func (k key) Hash() uint64      { return uint64(len(k.name)) }
func (k key) Equals(o key) bool { return k.name == o.name }

func TestHashMap_1(t *testing.T) {
	m := NewHashMap[key, int]()
	//
	if m.Insert(key{"ab"}, 1) {
		t.Errorf("fresh key reported present")
	}
	//
	if !m.Insert(key{"ab"}, 2) {
		t.Errorf("existing key reported absent")
	}
	//
	if v, ok := m.Get(key{"ab"}); !ok || v != 2 {
		t.Errorf("lookup gave %d", v)
	}
	//
	if m.Size() != 1 {
		t.Errorf("size %d", m.Size())
	}
}

func TestHashMap_2(t *testing.T) {
	m := NewHashMap[key, int]()
	// Same hash, different keys.
	m.Insert(key{"ab"}, 1)
	m.Insert(key{"cd"}, 2)
	//
	if v, ok := m.Get(key{"ab"}); !ok || v != 1 {
		t.Errorf("collision lost ab (%d)", v)
	}
	//
	if v, ok := m.Get(key{"cd"}); !ok || v != 2 {
		t.Errorf("collision lost cd (%d)", v)
	}
	//
	if m.ContainsKey(key{"ef"}) {
		t.Errorf("phantom key")
	}
	//
	if m.Size() != 2 {
		t.Errorf("size %d", m.Size())
	}
}
