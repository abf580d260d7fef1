// Package distribution computes the quarterly 60/30/10 split of the pooled
// treasury balance across the community, stakeholder and operating-cost
// classes.
//
// All arithmetic is integer floor division. The remainder of the three-way
// class split (at most 2 satoshis) and the remainder of each intra-class
// equal split stay in the pool for the next cycle. This rounding-loss policy
// is deliberate; the leftover is never redistributed within the same cycle.
package distribution

import "fmt"

// Fixed class percentages of the pool.
const (
	CommunityShare   = 60
	StakeholderShare = 30
	OperatingShare   = 10
)

// Class names a recipient class.
type Class string

const (
	ClassCommunity   Class = "community"
	ClassStakeholder Class = "stakeholder"
	ClassOperating   Class = "operating"
)

// Split divides pool into the three class amounts by floor division.
// community + stakeholder + operating <= pool; the difference stays pooled.
func Split(pool uint64) (community, stakeholder, operating uint64) {
	community = pool * CommunityShare / 100
	stakeholder = pool * StakeholderShare / 100
	operating = pool * OperatingShare / 100
	return community, stakeholder, operating
}

// Payout is a single planned transfer to one registry member.
type Payout struct {
	Address string
	Amount  uint64
	Class   Class
	Index   int // position within the class registry
}

// Plan is the complete disbursement schedule for one cycle over a fixed
// pool. Zero-amount shares are omitted from the payout lists; their value
// stays in the leftover.
type Plan struct {
	Pool uint64

	CommunityAmount   uint64 // class gross, pool*60/100
	StakeholderAmount uint64 // class gross, pool*30/100
	OperatingAmount   uint64 // class gross, pool*10/100

	PerCommunity   uint64 // floor(CommunityAmount / N)
	PerStakeholder uint64 // floor(StakeholderAmount / N)

	Community   []Payout
	Stakeholder []Payout
	Operating   []Payout // zero or one entry

	Disbursed uint64 // sum of all payout amounts
	Leftover  uint64 // Pool - Disbursed, carried to the next cycle
}

// Payouts returns every planned transfer in disbursement order:
// community members first, then stakeholders, then the operating recipient.
func (p *Plan) Payouts() []Payout {
	out := make([]Payout, 0, len(p.Community)+len(p.Stakeholder)+len(p.Operating))
	out = append(out, p.Community...)
	out = append(out, p.Stakeholder...)
	out = append(out, p.Operating...)
	return out
}

// BuildPlan computes the full disbursement schedule for one cycle.
//
// Both multi-member classes must be non-empty and the operating recipient
// must be set, otherwise ErrNoRecipients is returned and the caller must
// abort the cycle before any transfer. Members receive floor(classAmount/N)
// each; duplicated registry entries receive one share per occurrence.
func BuildPlan(pool uint64, community, stakeholder []string, operating string) (*Plan, error) {
	if pool == 0 {
		return nil, ErrEmptyPool
	}
	if len(community) == 0 {
		return nil, fmt.Errorf("%w: community", ErrNoRecipients)
	}
	if len(stakeholder) == 0 {
		return nil, fmt.Errorf("%w: stakeholder", ErrNoRecipients)
	}
	if operating == "" {
		return nil, fmt.Errorf("%w: operating", ErrNoRecipients)
	}

	communityAmt, stakeholderAmt, operatingAmt := Split(pool)

	plan := &Plan{
		Pool:              pool,
		CommunityAmount:   communityAmt,
		StakeholderAmount: stakeholderAmt,
		OperatingAmount:   operatingAmt,
		PerCommunity:      communityAmt / uint64(len(community)),
		PerStakeholder:    stakeholderAmt / uint64(len(stakeholder)),
	}

	if plan.PerCommunity > 0 {
		for i, addr := range community {
			plan.Community = append(plan.Community, Payout{
				Address: addr, Amount: plan.PerCommunity, Class: ClassCommunity, Index: i,
			})
			plan.Disbursed += plan.PerCommunity
		}
	}
	if plan.PerStakeholder > 0 {
		for i, addr := range stakeholder {
			plan.Stakeholder = append(plan.Stakeholder, Payout{
				Address: addr, Amount: plan.PerStakeholder, Class: ClassStakeholder, Index: i,
			})
			plan.Disbursed += plan.PerStakeholder
		}
	}
	if operatingAmt > 0 {
		plan.Operating = append(plan.Operating, Payout{
			Address: operating, Amount: operatingAmt, Class: ClassOperating, Index: 0,
		})
		plan.Disbursed += operatingAmt
	}

	plan.Leftover = pool - plan.Disbursed
	return plan, nil
}
