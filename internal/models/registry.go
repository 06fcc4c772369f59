package models

// modelTier bundles the attributes that every model released at a given
// cost class shares, since successive generations at the same tier keep
// the same capability set and token ceilings.
type modelTier struct {
	cost            CostTier
	contextWindow   int
	maxOutputTokens int
}

var (
	peakTier   = modelTier{cost: CostTierHigh, contextWindow: 200_000, maxOutputTokens: 128_000}
	peakTierV1 = modelTier{cost: CostTierHigh, contextWindow: 200_000, maxOutputTokens: 64_000}
	peakTierV0 = modelTier{cost: CostTierHigh, contextWindow: 200_000, maxOutputTokens: 32_000}
	coreTier   = modelTier{cost: CostTierMedium, contextWindow: 200_000, maxOutputTokens: 64_000}
	swiftTier  = modelTier{cost: CostTierLow, contextWindow: 200_000, maxOutputTokens: 64_000}
)

// allCapabilities is the set of capabilities shared by every current
// generation model in the catalog.
var allCapabilities = []Capability{
	CapVision,
	CapToolUse,
	CapReasoning,
	CapStructuredOutput,
}

// newModel builds a Model from a tier template, so each registry entry
// only has to state what differs between generations: its ID, display
// name, and (for the newest model per tier) its short alias.
func newModel(id, name string, tier modelTier, aliases ...string) Model {
	return Model{
		ID:              id,
		Name:            name,
		Aliases:         aliases,
		CostTier:        tier.cost,
		Capabilities:    allCapabilities,
		ContextWindow:   tier.contextWindow,
		MaxOutputTokens: tier.maxOutputTokens,
	}
}

// registry is the internal list of every known model the Agent CLI can be
// told to run. Only the newest model per tier keeps the short alias; older
// generations stay addressable by their full ID.
var registry = []Model{
	newModel("nimbus-peak-4-6", "Nimbus Peak 4.6", peakTier, "opus"),
	newModel("nimbus-core-4-6", "Nimbus Core 4.6", coreTier, "sonnet"),
	newModel("nimbus-swift-4-5", "Nimbus Swift 4.5", swiftTier, "haiku"),
	newModel("nimbus-peak-4-5", "Nimbus Peak 4.5", peakTierV1),
	newModel("nimbus-core-4-5", "Nimbus Core 4.5", coreTier),
	newModel("nimbus-peak-4-1", "Nimbus Peak 4.1", peakTierV0),
	newModel("nimbus-peak-4-0", "Nimbus Peak 4", peakTierV0),
	newModel("nimbus-core-4-0", "Nimbus Core 4", coreTier),
}
