package sim

import (
	"github.com/grailbio/base/log"
)

// RamModuleConfig sizes a RamModule: the number of chips, the number of
// request ports, the per-chip geometry/timing, and the queue capacities.
type RamModuleConfig struct {
	NumRams  int
	NumPorts int
	RAM      RAMConfig

	// PortFifoLength bounds each port's input FIFO. A full input FIFO is
	// backpressure, not an error: IsPortReady turns false.
	PortFifoLength int
	// ROBSize bounds the per-port reorder buffer. A read is only dispatched
	// to a chip while its port has a free ROB slot.
	ROBSize int
	// InflightFifoLength bounds each chip's in-flight request FIFO.
	InflightFifoLength int
}

// ramModuleRequest is one entry of a port input FIFO: a read or write
// waiting to be dispatched to its chip.
type ramModuleRequest[T any] struct {
	address uint64
	port    int
	write   bool
	data    T
}

// inflightRequest fingerprints a read dispatched to a chip. The full module
// address (not just the chip-local one) is kept so that a completion can be
// matched to the right ROB entry even when two chips serve the same
// chip-local address for one port.
type inflightRequest struct {
	address uint64
	port    int
}

type robEntry[T any] struct {
	address uint64
	value   T
	ready   bool
}

// RamModule is a fairness-scheduled, multi-port façade over NumRams chips.
// Each port sees its reads retire strictly in issue order: completions from
// the chips, which may arrive out of order because requests fan out across
// chips, land in a per-port reorder buffer and only the buffer head is ever
// published. Writes are dispatched through the same input FIFOs but occupy
// no ROB slot; once handed to a chip their completion is invisible.
//
// Contention for a chip is resolved round-robin: each chip keeps its own
// port counter and scans from it, so a port holding a request for an idle
// chip is served within NumPorts ticks.
type RamModule[T any] struct {
	cfg RamModuleConfig

	rams          []*RAM[T]
	inflightFifos []*Fifo[inflightRequest]
	portCounters  []int

	portFifos []*Fifo[ramModuleRequest[T]]
	robs      [][]robEntry[T]
	readReady []bool
	readData  []T

	cycles uint64
}

// NewRamModule returns a module of zero-filled chips.
func NewRamModule[T any](cfg RamModuleConfig) *RamModule[T] {
	if cfg.NumRams <= 0 || cfg.NumPorts <= 0 {
		log.Panicf("ram module: need at least one chip and one port, got %d/%d", cfg.NumRams, cfg.NumPorts)
	}
	m := &RamModule[T]{
		cfg:           cfg,
		rams:          make([]*RAM[T], cfg.NumRams),
		inflightFifos: make([]*Fifo[inflightRequest], cfg.NumRams),
		portCounters:  make([]int, cfg.NumRams),
		portFifos:     make([]*Fifo[ramModuleRequest[T]], cfg.NumPorts),
		robs:          make([][]robEntry[T], cfg.NumPorts),
		readReady:     make([]bool, cfg.NumPorts),
		readData:      make([]T, cfg.NumPorts),
	}
	for i := range m.rams {
		m.rams[i] = NewRAM[T](cfg.RAM)
		m.inflightFifos[i] = NewFifo[inflightRequest](cfg.InflightFifoLength)
	}
	for i := range m.portFifos {
		m.portFifos[i] = NewFifo[ramModuleRequest[T]](cfg.PortFifoLength)
		m.robs[i] = make([]robEntry[T], 0, cfg.ROBSize)
	}
	return m
}

// RamAddressWidth returns the number of address bits of one chip; the chip
// id occupies the bits above it in a module address.
func (m *RamModule[T]) RamAddressWidth() uint { return m.cfg.RAM.AddressWidth() }

// NumRams returns the number of chips.
func (m *RamModule[T]) NumRams() int { return m.cfg.NumRams }

// NumBanks returns the total bank count across all chips.
func (m *RamModule[T]) NumBanks() int { return m.cfg.NumRams << m.cfg.RAM.BankWidth }

// Size returns the number of elements the module holds across all chips.
func (m *RamModule[T]) Size() uint64 { return uint64(m.cfg.NumRams) * m.cfg.RAM.Size() }

func (m *RamModule[T]) ramID(address uint64) uint64 { return address >> m.RamAddressWidth() }

func (m *RamModule[T]) ramAddress(address uint64) uint64 {
	return address & ((1 << m.RamAddressWidth()) - 1)
}

// Preload distributes data sequentially across the chips, filling each chip
// to capacity before moving to the next, bypassing all timing.
func (m *RamModule[T]) Preload(data []T) {
	if uint64(len(data)) > m.Size() {
		log.Panicf("ram module: preload of %d elements exceeds capacity %d", len(data), m.Size())
	}
	chipSize := m.cfg.RAM.Size()
	for i, v := range data {
		m.rams[uint64(i)/chipSize].DirectWrite(uint64(i)%chipSize, v)
	}
}

// IsPortReady reports whether the port can accept another request this
// cycle.
func (m *RamModule[T]) IsPortReady(port int) bool { return !m.portFifos[port].IsFull() }

// ReadRequest enqueues a read of address on the given port. The caller must
// check IsPortReady first.
func (m *RamModule[T]) ReadRequest(address uint64, port int) {
	m.checkRequest(address, port)
	m.portFifos[port].WriteRequest(ramModuleRequest[T]{address: address, port: port})
}

// WriteRequest enqueues a write of v to address on the given port. Writes
// are ordered with respect to reads on the same port only up to dispatch;
// after that their completion time is set solely by bank timing.
func (m *RamModule[T]) WriteRequest(address uint64, v T, port int) {
	m.checkRequest(address, port)
	m.portFifos[port].WriteRequest(ramModuleRequest[T]{address: address, port: port, write: true, data: v})
}

func (m *RamModule[T]) checkRequest(address uint64, port int) {
	if id := m.ramID(address); id >= uint64(m.cfg.NumRams) {
		log.Panicf("ram module: address %#x addresses chip %d of %d", address, id, m.cfg.NumRams)
	}
	if port < 0 || port >= m.cfg.NumPorts {
		log.Panicf("ram module: bad port %d", port)
	}
}

// ReadReady reports whether a read retired on the port this cycle. True for
// exactly one cycle per read; reads retire in issue order.
func (m *RamModule[T]) ReadReady(port int) bool { return m.readReady[port] }

// ReadData returns the value of the read that retired on the port this
// cycle.
func (m *RamModule[T]) ReadData(port int) T {
	if !m.readReady[port] {
		log.Panicf("ram module: ReadData on port %d with no retired read", port)
	}
	return m.readData[port]
}

// AccessCounts returns the per-chip request counts since the last Reset.
func (m *RamModule[T]) AccessCounts() []uint64 {
	counts := make([]uint64, m.cfg.NumRams)
	for i, r := range m.rams {
		counts[i] = r.AccessCount()
	}
	return counts
}

// Rams exposes the underlying chips. Testing only.
func (m *RamModule[T]) Rams() []*RAM[T] { return m.rams }

// CycleCount returns the number of clock cycles this module has seen.
func (m *RamModule[T]) CycleCount() uint64 { return m.cycles }

// NextClockCycle runs one scheduling round: dispatch at most one request per
// chip (round-robin across ports), route chip completions into the reorder
// buffers, retire each port's ROB head, then tick the chips and FIFOs.
func (m *RamModule[T]) NextClockCycle() {
	m.cycles++
	for i := range m.readReady {
		m.readReady[i] = false
	}

	for i := 0; i < m.cfg.NumRams; i++ {
		m.dispatch(i)
	}

	for i := 0; i < m.cfg.NumRams; i++ {
		if !m.rams[i].ReadReady() {
			continue
		}
		// The chip's completions come back in its own issue order, so the
		// in-flight FIFO head names the finished request.
		req := m.inflightFifos[i].ReadData()
		m.inflightFifos[i].ReadRequest()
		m.fillROB(req, m.rams[i].ReadData())
	}

	for p := 0; p < m.cfg.NumPorts; p++ {
		if rob := m.robs[p]; len(rob) > 0 && rob[0].ready {
			m.readReady[p] = true
			m.readData[p] = rob[0].value
			copy(rob, rob[1:])
			m.robs[p] = rob[:len(rob)-1]
		}
	}

	for i := range m.rams {
		m.rams[i].NextClockCycle()
		m.inflightFifos[i].NextClockCycle()
	}
	for i := range m.portFifos {
		m.portFifos[i].NextClockCycle()
	}
}

// dispatch scans the ports starting from the chip's round-robin counter and
// hands the first matching request to the chip. Reads additionally need a
// free ROB slot on their port and a free in-flight FIFO slot on the chip.
func (m *RamModule[T]) dispatch(ram int) {
	for j := 0; j < m.cfg.NumPorts; j++ {
		port := (j + m.portCounters[ram]) % m.cfg.NumPorts
		fifo := m.portFifos[port]
		if fifo.IsEmpty() {
			continue
		}
		req := fifo.ReadData()
		if m.ramID(req.address) != uint64(ram) {
			continue
		}
		if req.write {
			m.rams[ram].WriteRequest(m.ramAddress(req.address), req.data)
		} else {
			if len(m.robs[port]) >= m.cfg.ROBSize || m.inflightFifos[ram].IsFull() {
				continue
			}
			m.rams[ram].ReadRequest(m.ramAddress(req.address))
			m.inflightFifos[ram].WriteRequest(inflightRequest{address: req.address, port: port})
			m.robs[port] = append(m.robs[port], robEntry[T]{address: req.address})
		}
		fifo.ReadRequest()
		m.portCounters[ram] = (port + 1) % m.cfg.NumPorts
		return
	}
}

// fillROB marks the oldest unfilled entry with the completion's address on
// the completion's port. Matching by address as well as age is required
// because dispatch to different chips reorders completions within a port.
func (m *RamModule[T]) fillROB(req inflightRequest, value T) {
	rob := m.robs[req.port]
	for i := range rob {
		if !rob[i].ready && rob[i].address == req.address {
			rob[i].value = value
			rob[i].ready = true
			return
		}
	}
	log.Panicf("ram module: completion for port %d address %#x matches no ROB entry", req.port, req.address)
}

// Reset restores the post-preload state: chip contents survive, everything
// queued or timed is cleared.
func (m *RamModule[T]) Reset() {
	for i := range m.rams {
		m.rams[i].Reset()
		m.inflightFifos[i].Reset()
		m.portCounters[i] = 0
	}
	for i := range m.portFifos {
		m.portFifos[i].Reset()
		m.robs[i] = m.robs[i][:0]
		m.readReady[i] = false
	}
}
