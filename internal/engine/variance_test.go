package engine

import (
	"math"
	"testing"

	"github.com/loopplatform/merchant-pulse/pkg/enums"
)

func relDiff(a, b float64) float64 {
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return diff
	}
	return diff / scale
}

func TestDecomposeIdentityHoldsForRevShare(t *testing.T) {
	c := revShareContract()

	cases := []struct {
		name                     string
		expVolume, actVolume     float64
		expAdoption, actAdoption float64
	}{
		{"under on both", 10000, 8000, 50, 40},
		{"over on both", 10000, 13000, 50, 62},
		{"volume only", 10000, 7500, 50, 50},
		{"adoption only", 10000, 10000, 50, 35},
		{"zero actuals", 10000, 0, 50, 0},
		{"negative swing", 10000, 12000, 80, 20},
	}

	for _, tc := range cases {
		d := Decompose(c, tc.expVolume, tc.actVolume, tc.expAdoption, tc.actAdoption)

		gap := d.ActualRevenue - d.ExpectedRevenue
		sum := d.VolumeContribution + d.AdoptionContribution + d.InteractionContribution
		if relDiff(gap, sum) > 1e-6 {
			t.Fatalf("%s: contributions %v do not explain gap %v", tc.name, sum, gap)
		}
	}
}

func TestDecomposeIsolatesSingleDrivers(t *testing.T) {
	c := revShareContract()

	volumeOnly := Decompose(c, 10000, 8000, 50, 50)
	if math.Abs(volumeOnly.AdoptionContribution) > 1e-9 {
		t.Fatalf("adoption held constant must contribute 0, got %v", volumeOnly.AdoptionContribution)
	}
	if math.Abs(volumeOnly.InteractionContribution) > 1e-9 {
		t.Fatalf("single-driver change must have no interaction, got %v", volumeOnly.InteractionContribution)
	}
	if volumeOnly.VolumeContribution >= 0 {
		t.Fatalf("volume shortfall must contribute negatively, got %v", volumeOnly.VolumeContribution)
	}

	adoptionOnly := Decompose(c, 10000, 10000, 50, 65)
	if math.Abs(adoptionOnly.VolumeContribution) > 1e-9 {
		t.Fatalf("volume held constant must contribute 0, got %v", adoptionOnly.VolumeContribution)
	}
	if adoptionOnly.AdoptionContribution <= 0 {
		t.Fatalf("adoption above plan must contribute positively, got %v", adoptionOnly.AdoptionContribution)
	}
}

func TestDecomposeFlatContractIsAllZero(t *testing.T) {
	c := revShareContract()
	c.PricingModel = enums.PricingModelFlat
	c.ExpectedAnnualRevenue = 50000

	d := Decompose(c, 10000, 2000, 50, 10)
	if d.ExpectedRevenue != 50000 || d.ActualRevenue != 50000 {
		t.Fatalf("flat revenue must stay at the contracted figure, got %+v", d)
	}
	if d.VolumeContribution != 0 || d.AdoptionContribution != 0 || d.InteractionContribution != 0 {
		t.Fatalf("flat contracts must decompose to zeros, got %+v", d)
	}
}

func TestDecomposeLoopLabelContract(t *testing.T) {
	c := revShareContract()
	c.LabelsPaidBy = enums.LabelsPaidByLoop

	d := Decompose(c, 10000, 9000, 50, 45)
	gap := d.ActualRevenue - d.ExpectedRevenue
	sum := d.VolumeContribution + d.AdoptionContribution + d.InteractionContribution
	if relDiff(gap, sum) > 1e-6 {
		t.Fatalf("identity must hold with label deductions, gap %v vs sum %v", gap, sum)
	}
	if math.Abs(d.ExpectedRevenue-3400.0) > 1e-9 {
		t.Fatalf("expected baseline 3400 for the loop-paid contract, got %v", d.ExpectedRevenue)
	}
}
