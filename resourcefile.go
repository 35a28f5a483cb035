// resourcefile.go - resource fork parsing (raw or MacBinary-wrapped).

package main

import (
	"fmt"
	"sort"
)

// OSType is a 32-bit four-character type tag used throughout the
// Toolbox (e.g. "CODE", "DLOG", "DITL").
type OSType string

// osTypeFromUint32 decodes a big-endian 4CC into an OSType.
func osTypeFromUint32(v uint32) OSType {
	return OSType([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

func (t OSType) asUint32() uint32 {
	b := []byte(t)
	for len(b) < 4 {
		b = append(b, ' ')
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Resource is one entry in a resource fork: a type/id pair, optional
// name, attribute byte, and its raw data. Immutable after load.
type Resource struct {
	Type       OSType
	ID         int16
	Attributes uint8
	Name       string
	Data       []byte
}

// ResourceFile is a parsed resource fork: raw or MacBinary-unwrapped,
// with resources grouped by type and indexed for lookup by (type,id)
// and (type,name).
type ResourceFile struct {
	resources []Resource
	byTypeID  map[OSType]map[int16]*Resource
	byTypeName map[OSType]map[string]*Resource
}

// resourceForkHeaderSize is the 16-byte header preceding the data and
// map blocks.
const resourceForkHeaderSize = 16

// ParseResourceFile parses raw, detecting and stripping a MacBinary II
// wrapper if present.
func ParseResourceFile(raw []byte) (*ResourceFile, error) {
	if len(raw) >= macBinaryHeaderSize && isMacBinary(raw[:macBinaryHeaderSize]) {
		length := int(macBinaryResourceForkLength(raw[:macBinaryHeaderSize]))
		end := macBinaryHeaderSize + length
		if end > len(raw) {
			return nil, structuralErr("macbinary rsrc_length %d exceeds file size", length)
		}
		raw = raw[macBinaryHeaderSize:end]
	}
	return parseRawFork(raw)
}

func parseRawFork(raw []byte) (*ResourceFile, error) {
	if len(raw) < resourceForkHeaderSize {
		return nil, structuralErr("resource fork too small for header (%d bytes)", len(raw))
	}
	root, err := rootRegionFromBytes("resource-fork", raw)
	if err != nil {
		return nil, err
	}

	dataOffset := be32(raw, 0)
	mapOffset := be32(raw, 4)
	dataLength := be32(raw, 8)
	mapLength := be32(raw, 12)
	_ = dataLength

	if int(mapOffset)+int(mapLength) > len(raw) {
		return nil, structuralErr("map block [%#x,%#x) exceeds file size", mapOffset, mapOffset+mapLength)
	}
	mapRegion, err := root.NewSubRegion("map", int(mapOffset), int(mapLength))
	if err != nil {
		return nil, err
	}

	// Map block: 16-byte header copy, 4-byte reserved handle, 2-byte
	// reserved refnum, 2-byte file attrs, 2-byte type-list offset
	// (relative to map), 2-byte name-list offset, 2-byte (typeCount-1).
	const mapPreambleSize = 16 + 4 + 2 + 2
	typeListOffset, err := mapRegion.ReadUint16(mapPreambleSize)
	if err != nil {
		return nil, err
	}
	nameListOffset, err := mapRegion.ReadUint16(mapPreambleSize + 2)
	if err != nil {
		return nil, err
	}
	typeCountMinusOne, err := mapRegion.ReadUint16(mapPreambleSize + 4)
	if err != nil {
		return nil, err
	}
	typeCount := int(typeCountMinusOne) + 1
	if typeCountMinusOne == 0xFFFF {
		typeCount = 0
	}

	rf := &ResourceFile{
		byTypeID:   map[OSType]map[int16]*Resource{},
		byTypeName: map[OSType]map[string]*Resource{},
	}

	// Type list: count (2 bytes, already consumed above) then entries
	// of (OSType:u32, count-1:u16, refListOffset:u16), refListOffset
	// relative to the start of the type list itself.
	typeListStart := int(typeListOffset)
	for i := 0; i < typeCount; i++ {
		entryOffset := typeListStart + 2 + i*8
		typeVal, err := mapRegion.ReadUint32(entryOffset)
		if err != nil {
			return nil, err
		}
		countMinusOne, err := mapRegion.ReadUint16(entryOffset + 4)
		if err != nil {
			return nil, err
		}
		refListOffset, err := mapRegion.ReadUint16(entryOffset + 6)
		if err != nil {
			return nil, err
		}
		osType := osTypeFromUint32(typeVal)
		count := int(countMinusOne) + 1

		for j := 0; j < count; j++ {
			refOffset := typeListStart + int(refListOffset) + j*12
			id, err := mapRegion.ReadUint16(refOffset)
			if err != nil {
				return nil, err
			}
			nameOffset, err := mapRegion.ReadUint16(refOffset + 2)
			if err != nil {
				return nil, err
			}
			attrAndOffset, err := mapRegion.ReadUint32(refOffset + 4)
			if err != nil {
				return nil, err
			}
			attributes := uint8(attrAndOffset >> 24)
			dataRelOffset := attrAndOffset & 0x00FFFFFF

			name := ""
			if nameOffset != 0xFFFF {
				nameRegionOffset := int(nameListOffset) + int(nameOffset)
				nameLen, err := mapRegion.ReadUint8(nameRegionOffset)
				if err != nil {
					return nil, err
				}
				nameBytes, err := mapRegion.ReadBytes(nameRegionOffset+1, int(nameLen))
				if err != nil {
					return nil, err
				}
				name = string(nameBytes)
			}

			dataAbsOffset := int(dataOffset) + int(dataRelOffset)
			size := be32(raw, dataAbsOffset)
			dataBytes := make([]byte, size)
			copy(dataBytes, raw[dataAbsOffset+4:dataAbsOffset+4+int(size)])

			res := Resource{
				Type:       osType,
				ID:         int16(id),
				Attributes: attributes,
				Name:       name,
				Data:       dataBytes,
			}
			rf.resources = append(rf.resources, res)
		}
	}

	for i := range rf.resources {
		res := &rf.resources[i]
		if rf.byTypeID[res.Type] == nil {
			rf.byTypeID[res.Type] = map[int16]*Resource{}
		}
		rf.byTypeID[res.Type][res.ID] = res
		if res.Name != "" {
			if rf.byTypeName[res.Type] == nil {
				rf.byTypeName[res.Type] = map[string]*Resource{}
			}
			rf.byTypeName[res.Type][res.Name] = res
		}
	}

	return rf, nil
}

func rootRegionFromBytes(name string, data []byte) (MemoryRegion, error) {
	r := NewRootRegion(name, len(data))
	if err := r.WriteBytes(0, data); err != nil {
		return MemoryRegion{}, err
	}
	return r, nil
}

func be32(b []byte, offset int) uint32 {
	return uint32(b[offset])<<24 | uint32(b[offset+1])<<16 | uint32(b[offset+2])<<8 | uint32(b[offset+3])
}

// FindByID looks up a resource by (type, id).
func (rf *ResourceFile) FindByID(t OSType, id int16) (*Resource, bool) {
	m, ok := rf.byTypeID[t]
	if !ok {
		return nil, false
	}
	res, ok := m[id]
	return res, ok
}

// FindByName looks up a resource by (type, name).
func (rf *ResourceFile) FindByName(t OSType, name string) (*Resource, bool) {
	m, ok := rf.byTypeName[t]
	if !ok {
		return nil, false
	}
	res, ok := m[name]
	return res, ok
}

// GroupByType returns every resource of the given type, sorted by id.
func (rf *ResourceFile) GroupByType(t OSType) []*Resource {
	var out []*Resource
	for i := range rf.resources {
		if rf.resources[i].Type == t {
			out = append(out, &rf.resources[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// String implements fmt.Stringer for diagnostics.
func (r Resource) String() string {
	return fmt.Sprintf("%s(%d)%q[%d bytes]", r.Type, r.ID, r.Name, len(r.Data))
}
