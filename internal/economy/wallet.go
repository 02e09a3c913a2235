package economy

// Wallet holds an agent's money. Balances never go negative: Debit refuses
// rather than overdrawing.
type Wallet struct {
	balance float64
}

// NewWallet creates a wallet with a starting balance.
func NewWallet(balance float64) Wallet {
	if balance < 0 {
		balance = 0
	}
	return Wallet{balance: balance}
}

// Credit adds money to the wallet. Negative amounts are ignored.
func (w *Wallet) Credit(amount float64) {
	if amount <= 0 {
		return
	}
	w.balance += amount
}

// Debit removes money from the wallet. Returns false (and changes nothing)
// when funds are insufficient.
func (w *Wallet) Debit(amount float64) bool {
	if amount < 0 {
		return false
	}
	if w.balance < amount {
		return false
	}
	w.balance -= amount
	return true
}

// Balance returns the current balance.
func (w *Wallet) Balance() float64 {
	return w.balance
}
