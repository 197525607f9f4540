// Package manifest holds the load-time registries that turn string-keyed content
// into category-scoped numeric identifiers.
package manifest

import (
	"fmt"
	"strconv"
)

// Category tags an identifier namespace. Implementations are zero-size marker
// structs; the tag only exists at compile time.
type Category interface {
	comparable
	CategoryName() string
}

// Handle is the numeric part of an ID. Zero never names an entity.
type Handle uint32

// ID references one entity of category C. Ids of different categories are
// distinct types and cannot be compared or assigned to each other.
type ID[C Category] struct {
	handle Handle
}

// IDFromHandle rebuilds an ID from a handle previously produced by an interner
// of the same load.
func IDFromHandle[C Category](h Handle) ID[C] {
	return ID[C]{handle: h}
}

func (id ID[C]) Handle() Handle { return id.handle }

// IsValid reports whether id was produced by an interner.
func (id ID[C]) IsValid() bool { return id.handle != 0 }

func (id ID[C]) Less(other ID[C]) bool { return id.handle < other.handle }

func (id ID[C]) Compare(other ID[C]) int {
	switch {
	case id.handle < other.handle:
		return -1
	case id.handle > other.handle:
		return 1
	default:
		return 0
	}
}

func (id ID[C]) String() string {
	return fmt.Sprintf("%s#%d", categoryName[C](), id.handle)
}

func (id ID[C]) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(id.handle), 10), nil
}

func (id *ID[C]) UnmarshalText(b []byte) error {
	v, err := strconv.ParseUint(string(b), 10, 32)
	if err != nil {
		return fmt.Errorf("%s id: %w", categoryName[C](), err)
	}
	id.handle = Handle(v)
	return nil
}

func categoryName[C Category]() string {
	var c C
	return c.CategoryName()
}
