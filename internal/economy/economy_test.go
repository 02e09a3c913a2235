package economy

import "testing"

func TestWalletDebitRefusesOverdraw(t *testing.T) {
	w := NewWallet(10)
	if !w.Debit(4) {
		t.Fatalf("debit within balance refused")
	}
	if w.Debit(7) {
		t.Fatalf("overdraw permitted")
	}
	if w.Balance() != 6 {
		t.Fatalf("balance = %v, want 6", w.Balance())
	}
	w.Credit(-5)
	if w.Balance() != 6 {
		t.Fatalf("negative credit changed balance: %v", w.Balance())
	}
}

func TestActorHoldingsClampAtZero(t *testing.T) {
	a := NewActor("test", 0)
	a.AdjustHolding(GoodWheat, 3)
	a.AdjustHolding(GoodWheat, -10)
	if got := a.Holding(GoodWheat); got != 0 {
		t.Fatalf("holding = %d, want 0", got)
	}
}

func TestParseGoodRoundtrip(t *testing.T) {
	for _, g := range Goods() {
		got, err := ParseGood(g.Name())
		if err != nil || got != g {
			t.Fatalf("ParseGood(%q) = %v, %v", g.Name(), got, err)
		}
	}
	if _, err := ParseGood("barley"); err == nil {
		t.Fatalf("unknown good accepted")
	}
}
