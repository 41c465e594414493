// Package mm declares the narrow interfaces this kernel core consumes from
// the virtual-memory subsystem (spec §6): alloc_page/free_page, uvm_create,
// uvm_first, uvm_copy, uvm_alloc, uvm_dealloc, uvm_free, map_pages,
// uvm_unmap, walk. The real implementations (page tables, the physical
// allocator) are explicitly out of scope (spec §1); this package exists so
// internal/kernel/trap's copy-on-write fault handler and internal/kernel's
// fork/exit have something concrete to call, and so tests can supply a
// fake backing store that actually tracks physical pages and reference
// counts well enough to exercise spec §8 property 7 (COW idempotence) and
// scenario S6.
package mm

import "errors"

// ErrOOM is returned by AllocPage and any Memory method that must allocate
// a physical page, matching spec §7's "out-of-memory during allocation ->
// the originating syscall returns -1 without mutating parent state."
var ErrOOM = errors.New("mm: out of memory")

// PTEFlags mirrors the hardware valid/user/read/write/execute bits plus the
// COW bit the spec calls out as "distinct from the hardware valid/user/
// read/write/execute bits" (spec §6).
type PTEFlags uint8

const (
	PTEV PTEFlags = 1 << iota // valid
	PTER                      // readable
	PTEW                      // writable
	PTEX                      // executable
	PTEU                      // user-accessible
	PTECOW                    // copy-on-write: must duplicate before write
)

// PA is an opaque physical address / page handle.
type PA uintptr

// PageTable is a process's user address space root (spec §3 "pagetable:
// owned root of user address space").
type PageTable interface {
	// Walk returns the PTE mapping va, allocating intermediate page-table
	// levels if alloc is true and none exist. ok is false if no mapping
	// exists and alloc is false (walk(pt, va, 0) returning 0 in the
	// original).
	Walk(va uintptr, alloc bool) (pte PTE, ok bool)

	// SetPTE repoints the mapping at va to the given PTE, used by the COW
	// handler after it allocates a new physical page.
	SetPTE(va uintptr, pte PTE)

	// Unmap removes n pages starting at va; if doFree the backing physical
	// pages are released to the allocator (uvm_unmap).
	Unmap(va uintptr, n int, doFree bool)

	// Free releases the page table itself and, implicitly, everything
	// still mapped below sz bytes (uvm_free).
	Free(sz uintptr)
}

// PTE is a page-table entry: a physical page plus flags.
type PTE struct {
	PA    PA
	Flags PTEFlags
}

// Memory is the physical/virtual memory subsystem this kernel core
// consumes (spec §6). Only the operations fork/exec-prep/exit and the COW
// fault handler actually need are exposed.
type Memory interface {
	// AllocPage returns a fresh zeroed physical page, or ErrOOM.
	AllocPage() (PA, error)
	// FreePage releases a physical page obtained from AllocPage.
	FreePage(pa PA)

	// Create returns an empty user page table (uvm_create). The core does
	// not map a trampoline/trapframe into it — there is no trampoline in
	// this simulation — callers only use it to hold user data pages.
	Create() (PageTable, error)

	// First maps data as the first (and only, initially) page of a
	// process's address space (uvm_first), used by userinit.
	First(pt PageTable, data []byte) error

	// Copy duplicates sz bytes of src's mappings into dst, sharing
	// physical pages marked copy-on-write rather than copying bytes
	// (uvm_copy under this core's COW-fork discipline).
	Copy(src, dst PageTable, sz uintptr) error

	// Alloc grows a page table's mapped region from oldSz to newSz,
	// returning the new size or ErrOOM (uvm_alloc).
	Alloc(pt PageTable, oldSz, newSz uintptr, flags PTEFlags) (uintptr, error)

	// Dealloc shrinks a page table's mapped region (uvm_dealloc).
	Dealloc(pt PageTable, oldSz, newSz uintptr) uintptr

	// ReadPage and WritePage give the COW handler and tests a way to
	// inspect/mutate page contents without reaching past this interface.
	ReadPage(pa PA) []byte
	WritePage(pa PA, data []byte)
}
