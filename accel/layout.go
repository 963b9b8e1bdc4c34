package accel

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/seedsim/sim"
)

// tableLayout is the build-time partition of a lookup table across the
// chips and banks of a DRAM module. Table entries are dealt out bank-first:
// every bank holds floor(size/numBanks) entries and the first size mod
// numBanks banks hold one extra. Both the controllers (to address an entry)
// and the preload path (to place it) walk the same partition.
type tableLayout struct {
	bankNumElem  [][]uint32 // [ram][bank]
	ramAddrWidth uint
	rowColWidth  uint
}

func newTableLayout(tableSize int, ram RAMOpts) tableLayout {
	numBanks := 1 << ram.BankWidth
	l := tableLayout{
		bankNumElem:  make([][]uint32, ram.NumRams),
		ramAddrWidth: ram.RowWidth + ram.ColWidth + ram.BankWidth,
		rowColWidth:  ram.RowWidth + ram.ColWidth,
	}
	for i := range l.bankNumElem {
		l.bankNumElem[i] = make([]uint32, numBanks)
		for j := range l.bankNumElem[i] {
			l.bankNumElem[i][j] = uint32(tableSize / (ram.NumRams * numBanks))
		}
	}
	for i := 0; i < tableSize%(ram.NumRams*numBanks); i++ {
		l.bankNumElem[i/numBanks][i%numBanks]++
	}
	return l
}

// address maps a table index to its DRAM module address by walking the
// partition.
func (l tableLayout) address(index uint64) uint64 {
	ram, bank := 0, 0
	for index >= uint64(l.bankNumElem[ram][bank]) {
		index -= uint64(l.bankNumElem[ram][bank])
		bank++
		if bank == len(l.bankNumElem[ram]) {
			ram++
			bank = 0
			if ram == len(l.bankNumElem) {
				log.Panicf("table layout: index beyond the partitioned table")
			}
		}
	}
	return uint64(ram)<<l.ramAddrWidth | uint64(bank)<<l.rowColWidth | index
}

// preload places table into module following the layout.
func (l tableLayout) preload(module *sim.RamModule[uint32], table []uint32) {
	image := make([]uint32, module.Size())
	ram, bank, offset := 0, 0, uint64(0)
	for _, v := range table {
		addr := uint64(ram)<<l.ramAddrWidth | uint64(bank)<<l.rowColWidth | offset
		image[addr] = v
		offset++
		if offset == uint64(l.bankNumElem[ram][bank]) {
			offset = 0
			bank++
			if bank == len(l.bankNumElem[ram]) {
				bank = 0
				ram++
			}
		}
	}
	module.Preload(image)
}

// fits reports whether every bank's share of the table fits its row×column
// cells.
func (l tableLayout) fits() bool {
	cells := uint32(1) << l.rowColWidth
	for _, banks := range l.bankNumElem {
		for _, n := range banks {
			if n > cells {
				return false
			}
		}
	}
	return true
}
