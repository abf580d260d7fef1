package distribution

// Records tracks the cumulative amount ever disbursed per recipient, one map
// per multi-member class plus a scalar for the operating-cost class. Totals
// are monotonically non-decreasing and never reset.
//
// Fields are exported for snapshot persistence; mutate only through Apply.
type Records struct {
	Community   map[string]uint64
	Stakeholder map[string]uint64
	Operating   uint64
}

// NewRecords creates empty cumulative records.
func NewRecords() *Records {
	return &Records{
		Community:   make(map[string]uint64),
		Stakeholder: make(map[string]uint64),
	}
}

// RestoreRecords rebuilds records from persisted maps. Nil maps are
// replaced with empty ones.
func RestoreRecords(community, stakeholder map[string]uint64, operating uint64) *Records {
	r := NewRecords()
	for addr, amt := range community {
		r.Community[addr] = amt
	}
	for addr, amt := range stakeholder {
		r.Stakeholder[addr] = amt
	}
	r.Operating = operating
	return r
}

// Apply adds every payout in the plan to the matching cumulative total.
// A duplicated registry member accumulates one share per occurrence.
func (r *Records) Apply(p *Plan) {
	for _, po := range p.Community {
		r.Community[po.Address] += po.Amount
	}
	for _, po := range p.Stakeholder {
		r.Stakeholder[po.Address] += po.Amount
	}
	for _, po := range p.Operating {
		r.Operating += po.Amount
	}
}

// DistributedTo returns the cumulative amount disbursed to an address within
// a class. The operating class ignores the address argument.
func (r *Records) DistributedTo(class Class, address string) uint64 {
	switch class {
	case ClassCommunity:
		return r.Community[address]
	case ClassStakeholder:
		return r.Stakeholder[address]
	case ClassOperating:
		return r.Operating
	}
	return 0
}

// Total returns the lifetime sum disbursed across all classes.
func (r *Records) Total() uint64 {
	var sum uint64
	for _, amt := range r.Community {
		sum += amt
	}
	for _, amt := range r.Stakeholder {
		sum += amt
	}
	return sum + r.Operating
}
