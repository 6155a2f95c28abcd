package engine

// Decomposition splits a revenue gap into the part explained by volume,
// the part explained by adoption, and the non-additive remainder. The
// three contributions always sum to ActualRevenue - ExpectedRevenue.
type Decomposition struct {
	ExpectedRevenue float64
	ActualRevenue   float64

	VolumeContribution      float64
	AdoptionContribution    float64
	InteractionContribution float64
}

// Decompose evaluates the revenue projector at four counterfactual input
// combinations: both expected, both actual, and each actual in
// isolation. Holding adoption at its expected value isolates the volume
// effect, and vice versa; the interaction term is what the two isolated
// effects miss. Flat contracts decompose to all zeros since the
// projector ignores its inputs.
func Decompose(c Contract, expectedVolume, actualVolume, expectedAdoptionPct, actualAdoptionPct float64) Decomposition {
	expected := ProjectAnnualRevenue(c, expectedVolume, expectedAdoptionPct)
	actual := ProjectAnnualRevenue(c, actualVolume, actualAdoptionPct)
	withActualVolume := ProjectAnnualRevenue(c, actualVolume, expectedAdoptionPct)
	withActualAdoption := ProjectAnnualRevenue(c, expectedVolume, actualAdoptionPct)

	return Decomposition{
		ExpectedRevenue:         expected,
		ActualRevenue:           actual,
		VolumeContribution:      withActualVolume - expected,
		AdoptionContribution:    withActualAdoption - expected,
		InteractionContribution: actual - withActualVolume - withActualAdoption + expected,
	}
}
