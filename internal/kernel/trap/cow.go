package trap

import "github.com/xv7go/xv7core/internal/kernel/mm"

// MaxVA bounds user virtual addresses (spec §4.8). The original's MAXVA is
// an Sv39 constant (1<<38 - PGSIZE); nothing in this simulation needs it to
// vary by architecture, so it's kept as a plain constant here.
const MaxVA = 1<<38 - mm.PageSize

func pageRoundDown(va uintptr) uintptr {
	return va &^ (mm.PageSize - 1)
}

// isFatalFault reports whether va is outside anything a copy-on-write
// resolution could ever fix: at or past MaxVA, zero, or inside the
// unmapped guard page immediately below the user stack (spec §4.8).
func isFatalFault(va uintptr, sp uint64) bool {
	if va == 0 || va >= MaxVA {
		return true
	}
	guardTop := pageRoundDown(uintptr(sp))
	guardBottom := guardTop - mm.PageSize
	return va >= guardBottom && va <= guardTop
}

// resolveCOW implements the copy-on-write half of a page fault (spec §4.8,
// §6): it allocates a fresh physical page, duplicates the old page's
// contents into it, repoints the faulting page table entry at the copy with
// the COW bit cleared and write enabled, and frees the parent's share of the
// original page. Returns ErrBadFault if va has no mapping at all, ErrNotCOW
// if the mapping exists but isn't a copy-on-write one.
func resolveCOW(mem mm.Memory, pt mm.PageTable, va uintptr) error {
	page := pageRoundDown(va)
	pte, ok := pt.Walk(page, false)
	if !ok {
		return ErrBadFault
	}
	if pte.Flags&mm.PTEV == 0 || pte.Flags&mm.PTEU == 0 || pte.Flags&mm.PTECOW == 0 {
		return ErrNotCOW
	}

	newPA, err := mem.AllocPage()
	if err != nil {
		return err
	}
	mem.WritePage(newPA, mem.ReadPage(pte.PA))

	newFlags := (pte.Flags &^ mm.PTECOW) | mm.PTEW
	pt.SetPTE(page, mm.PTE{PA: newPA, Flags: newFlags})
	mem.FreePage(pte.PA)
	return nil
}
