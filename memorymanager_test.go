// memorymanager_test.go - handle invariants: the word at a handle's
// address always equals its recorded start, the region size matches
// what was allocated, and Contains resolves every address inside the
// block back to the same handle.

package main

import "testing"

func TestHandleInvariants(t *testing.T) {
	mm := NewMemoryMap(0, 0)
	mem := NewMemoryManager(mm)

	h, err := mem.AllocateHandle(64, "test-block")
	if err != nil {
		t.Fatalf("AllocateHandle: %v", err)
	}

	start, err := mem.GetPtrForHandle(h)
	if err != nil {
		t.Fatalf("GetPtrForHandle: %v", err)
	}
	word, err := mm.ReadUint32(h)
	if err != nil {
		t.Fatalf("ReadUint32: %v", err)
	}
	if int(word) != start {
		t.Fatalf("word at handle %#x = %#x, want %#x (recorded start)", h, word, start)
	}

	size, err := mem.GetSize(h)
	if err != nil {
		t.Fatalf("GetSize: %v", err)
	}
	if size != 64 {
		t.Fatalf("GetSize = %d, want 64", size)
	}

	region, err := mem.RegionFor(h)
	if err != nil {
		t.Fatalf("RegionFor: %v", err)
	}
	if region.Size() != 64 {
		t.Fatalf("region size = %d, want 64", region.Size())
	}

	for k := 0; k < size; k++ {
		if got := mem.Contains(start + k); got != h {
			t.Fatalf("Contains(start+%d) = %#x, want %#x", k, got, h)
		}
	}
	if got := mem.Contains(start + size); got != 0 {
		t.Fatalf("Contains(start+size) = %#x, want 0 (one past the end)", got)
	}

	if tag, err := mem.Tag(h); err != nil || tag != "test-block" {
		t.Fatalf("Tag = %q, %v, want \"test-block\", nil", tag, err)
	}
}

func TestDeallocateRemovesHandle(t *testing.T) {
	mm := NewMemoryMap(0, 0)
	mem := NewMemoryManager(mm)

	h, err := mem.AllocateHandle(16, "short-lived")
	if err != nil {
		t.Fatalf("AllocateHandle: %v", err)
	}
	start, _ := mem.GetPtrForHandle(h)

	if err := mem.Deallocate(h); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
	if _, err := mem.GetPtrForHandle(h); err == nil {
		t.Fatal("GetPtrForHandle succeeded after Deallocate")
	}
	if got := mem.Contains(start); got != 0 {
		t.Fatalf("Contains(start) = %#x after Deallocate, want 0", got)
	}
}

func TestAllocateHandleForRoundTrip(t *testing.T) {
	mm := NewMemoryMap(0, 0)
	mem := NewMemoryManager(mm)

	data := []byte{1, 2, 3, 4, 5}
	h, err := mem.AllocateHandleFor(data, "blob")
	if err != nil {
		t.Fatalf("AllocateHandleFor: %v", err)
	}
	region, err := mem.RegionFor(h)
	if err != nil {
		t.Fatalf("RegionFor: %v", err)
	}
	got, err := region.ReadBytes(0, len(data))
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestHeapExhaustion(t *testing.T) {
	mm := NewMemoryMap(0, 0)
	mem := NewMemoryManager(mm)

	if err := mem.SetApplLimit(addrApplHeapStart + defaultHandleTableBytes + 64); err != nil {
		t.Fatalf("SetApplLimit: %v", err)
	}

	if _, err := mem.AllocateHandle(1<<20, "too-big"); err == nil {
		t.Fatal("AllocateHandle succeeded for a block larger than the heap")
	}
}
