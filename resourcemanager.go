// resourcemanager.go - caches resources into Memory Manager handles on demand.
//
// Grounded on emu/rsrc/resource_manager.{h,cc}.

package main

import "fmt"

// resErrNotFound is the ResErr code reported when a lookup misses in
// every file searched.
const resErrNotFound = -192

// ResourceManager caches handles keyed by "Resource[<type>:<id>]",
// falling back from the application file to an optional System file.
type ResourceManager struct {
	mem        *MemoryManager
	appFile    *ResourceFile
	systemFile *ResourceFile
	cache      map[string]int
	resErr     int16
}

// NewResourceManager constructs a ResourceManager backed by appFile,
// with an optional systemFile fallback.
func NewResourceManager(mem *MemoryManager, appFile, systemFile *ResourceFile) *ResourceManager {
	return &ResourceManager{
		mem:        mem,
		appFile:    appFile,
		systemFile: systemFile,
		cache:      map[string]int{},
	}
}

// ResErr returns the last resource-lookup error code (0 if the most
// recent lookup succeeded).
func (rm *ResourceManager) ResErr() int16 { return rm.resErr }

func cacheKey(t OSType, id int16) string {
	return fmt.Sprintf("Resource[%s:%d]", t, id)
}

// GetResource returns a handle to the resource (type,id), materializing
// it into a fresh Memory Manager handle on first access. On a miss in
// both files it sets ResErr = -192 and returns handle 0.
func (rm *ResourceManager) GetResource(t OSType, id int16) int {
	key := cacheKey(t, id)
	if h, ok := rm.cache[key]; ok {
		rm.resErr = 0
		return h
	}

	res, ok := rm.lookup(t, id, "")
	if !ok {
		rm.resErr = resErrNotFound
		return 0
	}
	return rm.materialize(key, res)
}

// Get1NamedResource returns a handle to the resource (type,name),
// searching only the application file (the "1" variant in the real
// Resource Manager restricts the search to one file).
func (rm *ResourceManager) Get1NamedResource(t OSType, name string) int {
	key := fmt.Sprintf("Resource[%s:%s]", t, name)
	if h, ok := rm.cache[key]; ok {
		rm.resErr = 0
		return h
	}
	if rm.appFile == nil {
		rm.resErr = resErrNotFound
		return 0
	}
	res, ok := rm.appFile.FindByName(t, name)
	if !ok {
		rm.resErr = resErrNotFound
		return 0
	}
	return rm.materialize(key, res)
}

func (rm *ResourceManager) lookup(t OSType, id int16, name string) (*Resource, bool) {
	if rm.appFile != nil {
		if res, ok := rm.appFile.FindByID(t, id); ok {
			return res, true
		}
	}
	if rm.systemFile != nil {
		if res, ok := rm.systemFile.FindByID(t, id); ok {
			return res, true
		}
	}
	return nil, false
}

func (rm *ResourceManager) materialize(key string, res *Resource) int {
	h, err := rm.mem.AllocateHandleFor(res.Data, string(res.Type))
	if err != nil {
		rm.resErr = resErrNotFound
		return 0
	}
	rm.cache[key] = h
	rm.resErr = 0
	return h
}

// ReleaseResource evicts a resource's cache entry and deallocates its
// handle.
func (rm *ResourceManager) ReleaseResource(t OSType, id int16) {
	key := cacheKey(t, id)
	if h, ok := rm.cache[key]; ok {
		rm.mem.Deallocate(h)
		delete(rm.cache, key)
	}
}

// SizeRsrc returns the byte size of resource (type,id) without forcing
// a full load, 0 if unknown.
func (rm *ResourceManager) SizeRsrc(t OSType, id int16) int {
	res, ok := rm.lookup(t, id, "")
	if !ok {
		return 0
	}
	return len(res.Data)
}

// GetResAttrs returns the attribute byte of resource (type,id).
func (rm *ResourceManager) GetResAttrs(t OSType, id int16) uint8 {
	res, ok := rm.lookup(t, id, "")
	if !ok {
		return 0
	}
	return res.Attributes
}
