package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestApplyBuyNewPosition(t *testing.T) {
	p := ApplyBuy(nil, d("0.1"), d("20000"))
	if !p.Amount.Equal(d("0.1")) {
		t.Fatalf("amount got=%s want=0.1", p.Amount)
	}
	if !p.AverageCost.Equal(d("20000")) {
		t.Fatalf("averageCost got=%s want=20000", p.AverageCost)
	}
}

func TestApplyBuyWeightedAverage(t *testing.T) {
	first := ApplyBuy(nil, d("0.1"), d("20000"))
	second := ApplyBuy(&first, d("0.1"), d("30000"))

	if !second.Amount.Equal(d("0.2")) {
		t.Fatalf("amount got=%s want=0.2", second.Amount)
	}
	// (0.1*20000 + 0.1*30000) / 0.2 = 25000
	if !second.AverageCost.Equal(d("25000")) {
		t.Fatalf("averageCost got=%s want=25000", second.AverageCost)
	}
}

func TestApplyBuyUnevenLots(t *testing.T) {
	first := ApplyBuy(nil, d("1"), d("100"))
	second := ApplyBuy(&first, d("3"), d("200"))

	// (1*100 + 3*200) / 4 = 175
	if !second.AverageCost.Equal(d("175")) {
		t.Fatalf("averageCost got=%s want=175", second.AverageCost)
	}
}

func TestApplySellKeepsAverageCost(t *testing.T) {
	pos := ApplyBuy(nil, d("0.2"), d("25000"))
	after := ApplySell(&pos, d("0.05"))

	if !after.Amount.Equal(d("0.15")) {
		t.Fatalf("amount got=%s want=0.15", after.Amount)
	}
	if !after.AverageCost.Equal(d("25000")) {
		t.Fatalf("averageCost got=%s want=25000 (sell must not touch it)", after.AverageCost)
	}
}

func TestIsDust(t *testing.T) {
	pos := ApplyBuy(nil, d("0.2"), d("25000"))

	full := ApplySell(&pos, d("0.2"))
	if !full.IsDust() {
		t.Fatalf("zero remainder should be dust, got %s", full.Amount)
	}

	tiny := ApplySell(&pos, d("0.19999999"))
	if !tiny.IsDust() {
		t.Fatalf("remainder %s at the dust threshold should be dust", tiny.Amount)
	}

	kept := ApplySell(&pos, d("0.1"))
	if kept.IsDust() {
		t.Fatalf("remainder %s should not be dust", kept.Amount)
	}
}

func TestCostBasis(t *testing.T) {
	pos := ApplyBuy(nil, d("0.2"), d("25000"))
	if !pos.CostBasis().Equal(d("5000")) {
		t.Fatalf("costBasis got=%s want=5000", pos.CostBasis())
	}
}
