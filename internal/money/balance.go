package money

// Balance holds the funds of one client account.
//
// Available is spendable. Held is frozen while a dispute is open. The total is
// always derived and never stored.
//
// The mutators do not check preconditions: callers (the ledger) verify that
// funds are sufficient before moving them.
type Balance struct {
	Available Amount
	Held      Amount
}

// Total returns Available + Held.
func (b Balance) Total() Amount {
	return b.Available.Add(b.Held)
}

// Credit adds amount to the available funds.
func (b *Balance) Credit(amount Amount) {
	b.Available = b.Available.Add(amount)
}

// Debit removes amount from the available funds.
func (b *Balance) Debit(amount Amount) {
	b.Available = b.Available.Sub(amount)
}

// Hold moves amount from available to held.
func (b *Balance) Hold(amount Amount) {
	b.Available = b.Available.Sub(amount)
	b.Held = b.Held.Add(amount)
}

// Release moves amount from held back to available.
func (b *Balance) Release(amount Amount) {
	b.Held = b.Held.Sub(amount)
	b.Available = b.Available.Add(amount)
}

// Forfeit removes amount from the held funds. Available is untouched.
func (b *Balance) Forfeit(amount Amount) {
	b.Held = b.Held.Sub(amount)
}
