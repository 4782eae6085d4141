package core

// AgentID is the agent's index in the instance.
type AgentID int

// Agent must travel Start → Pickup → Drop.
type Agent struct {
	ID     AgentID
	Start  Cell
	Pickup Cell
	Drop   Cell
}

// LegKind distinguishes the two sub-journeys of an agent.
type LegKind int

const (
	LegPickup LegKind = iota // start → pickup
	LegDrop                  // pickup → drop
)

func (k LegKind) String() string {
	return [...]string{"pickup", "drop"}[k]
}

// Leg is one sub-journey of an agent's route.
type Leg struct {
	Kind     LegKind
	From, To Cell
}

// Legs returns the agent's legs in travel order.
func (a *Agent) Legs() []Leg {
	return []Leg{
		{Kind: LegPickup, From: a.Start, To: a.Pickup},
		{Kind: LegDrop, From: a.Pickup, To: a.Drop},
	}
}

// Endpoints returns start, pickup and drop.
func (a *Agent) Endpoints() []Cell {
	return []Cell{a.Start, a.Pickup, a.Drop}
}
