package mm

import "sync"

// PageSize is the simulated page size, matching xv6-riscv's PGSIZE.
const PageSize = 4096

type page struct {
	data     []byte
	refcount int
}

// FakeMemory is an in-process Memory good enough to drive fork/exit and the
// copy-on-write fault handler end to end in tests: physical pages are
// []byte slices in a map keyed by a monotonically increasing PA, with a
// reference count incremented whenever a page is shared copy-on-write by
// Copy and decremented by FreePage/Unmap. It is not a virtual-memory
// implementation — no TLB, no real address translation — only enough
// bookkeeping to make spec §8 property 7 (COW idempotence) and scenario S6
// (physical page count increases by exactly one after two post-fork
// writes) observable and assertable.
type FakeMemory struct {
	mu      sync.Mutex
	pages   map[PA]*page
	nextPA  PA
	allocFn func() bool // returns false to simulate OOM; nil means never
}

// NewFakeMemory returns a FakeMemory with unlimited capacity.
func NewFakeMemory() *FakeMemory {
	return &FakeMemory{pages: make(map[PA]*page)}
}

// SetAllocGate installs a predicate consulted on every AllocPage; returning
// false simulates OOM, for exercising spec §7's OOM-returns-error path.
func (m *FakeMemory) SetAllocGate(fn func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocFn = fn
}

// PageCount reports how many distinct physical pages are currently live,
// the metric scenario S6 asserts on. A COW fault on a page that is still
// shared raises it by one; a fault by the page's last sharer allocates one
// page and frees the old one, leaving it unchanged.
func (m *FakeMemory) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

func (m *FakeMemory) AllocPage() (PA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allocFn != nil && !m.allocFn() {
		return 0, ErrOOM
	}
	m.nextPA++
	pa := m.nextPA
	m.pages[pa] = &page{data: make([]byte, PageSize), refcount: 1}
	return pa, nil
}

func (m *FakeMemory) FreePage(pa PA) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pg, ok := m.pages[pa]
	if !ok {
		return
	}
	pg.refcount--
	if pg.refcount <= 0 {
		delete(m.pages, pa)
	}
}

func (m *FakeMemory) ReadPage(pa PA) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	pg, ok := m.pages[pa]
	if !ok {
		return nil
	}
	out := make([]byte, len(pg.data))
	copy(out, pg.data)
	return out
}

func (m *FakeMemory) WritePage(pa PA, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pg, ok := m.pages[pa]
	if !ok {
		return
	}
	copy(pg.data, data)
}

func (m *FakeMemory) Create() (PageTable, error) {
	return &fakePageTable{mem: m, ptes: make(map[uintptr]PTE)}, nil
}

func (m *FakeMemory) First(pt PageTable, data []byte) error {
	pa, err := m.AllocPage()
	if err != nil {
		return err
	}
	buf := make([]byte, PageSize)
	copy(buf, data)
	m.WritePage(pa, buf)
	pt.SetPTE(0, PTE{PA: pa, Flags: PTEV | PTER | PTEW | PTEX | PTEU})
	return nil
}

func (m *FakeMemory) Copy(src, dst PageTable, sz uintptr) error {
	s := src.(*fakePageTable)
	d := dst.(*fakePageTable)
	m.mu.Lock()
	for va, pte := range s.ptes {
		if va >= sz {
			continue
		}
		flags := pte.Flags
		flags &^= PTEW
		flags |= PTECOW
		s.ptes[va] = PTE{PA: pte.PA, Flags: flags} // parent also becomes COW
		d.ptes[va] = PTE{PA: pte.PA, Flags: flags}
		if pg, ok := m.pages[pte.PA]; ok {
			pg.refcount++
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *FakeMemory) Alloc(pt PageTable, oldSz, newSz uintptr, flags PTEFlags) (uintptr, error) {
	p := pt.(*fakePageTable)
	for va := oldSz; va < newSz; va += PageSize {
		pa, err := m.AllocPage()
		if err != nil {
			return oldSz, err
		}
		p.ptes[va] = PTE{PA: pa, Flags: flags | PTEV}
	}
	return newSz, nil
}

func (m *FakeMemory) Dealloc(pt PageTable, oldSz, newSz uintptr) uintptr {
	pt.Unmap(newSz, int((oldSz-newSz)/PageSize), true)
	return newSz
}

type fakePageTable struct {
	mem  *FakeMemory
	ptes map[uintptr]PTE
}

func (p *fakePageTable) Walk(va uintptr, alloc bool) (PTE, bool) {
	pte, ok := p.ptes[va]
	return pte, ok
}

func (p *fakePageTable) SetPTE(va uintptr, pte PTE) {
	p.ptes[va] = pte
}

func (p *fakePageTable) Unmap(va uintptr, n int, doFree bool) {
	for i := 0; i < n; i++ {
		addr := va + uintptr(i)*PageSize
		pte, ok := p.ptes[addr]
		if !ok {
			continue
		}
		delete(p.ptes, addr)
		if doFree {
			p.mem.FreePage(pte.PA)
		}
	}
}

func (p *fakePageTable) Free(sz uintptr) {
	n := int(sz / PageSize)
	if sz%PageSize != 0 {
		n++
	}
	p.Unmap(0, n, true)
}
