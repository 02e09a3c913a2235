package economy

// Trader is the counterparty contract the market trades against: a readable
// and mutable holding per good plus a wallet. Any agent type that can expose
// these is tradable; the market never sees more of an agent than this.
type Trader interface {
	Name() string
	Holding(g Good) int
	AdjustHolding(g Good, delta int)
	Credit(amount float64)
	Debit(amount float64) bool
	Balance() float64
}

// BreadMaker is an optional capability a Trader may expose. The market uses
// it to refuse selling bread back to the agent that baked it, unless the
// purchase is a survival purchase or the baker has paused production for
// lack of profit.
type BreadMaker interface {
	BakesBread() bool
	ProfitPaused() bool
}

// Actor is the concrete trading party used by the simulation driver and the
// tests. Holdings never go negative.
type Actor struct {
	ActorName string
	Goods     map[Good]int
	Purse     Wallet

	// Producer flags read through the BreadMaker capability.
	Baker  bool
	Paused bool
}

// NewActor creates an actor with a starting balance and empty holdings.
func NewActor(name string, balance float64) *Actor {
	return &Actor{
		ActorName: name,
		Goods:     make(map[Good]int, GoodCount),
		Purse:     NewWallet(balance),
	}
}

func (a *Actor) Name() string { return a.ActorName }

// Holding returns the current quantity of a good.
func (a *Actor) Holding(g Good) int { return a.Goods[g] }

// AdjustHolding changes the quantity of a good, clamping at zero.
func (a *Actor) AdjustHolding(g Good, delta int) {
	a.Goods[g] += delta
	if a.Goods[g] < 0 {
		a.Goods[g] = 0
	}
}

func (a *Actor) Credit(amount float64)     { a.Purse.Credit(amount) }
func (a *Actor) Debit(amount float64) bool { return a.Purse.Debit(amount) }
func (a *Actor) Balance() float64          { return a.Purse.Balance() }

func (a *Actor) BakesBread() bool   { return a.Baker }
func (a *Actor) ProfitPaused() bool { return a.Paused }
