package registry

// Seed categories.
const (
	CategorySupplyChain = "supply_chain"
	CategoryKnowledge   = "knowledge"
	CategoryBusiness    = "business"
	CategoryTechnology  = "technology"
	CategoryFinance     = "finance"
	CategoryMedical     = "medical"
)

// seedVerbs is the canonical verb catalog loaded at process start: the 37
// supply-chain action verbs plus the cross-domain sets. Seed entries are
// never removed at runtime; dynamic registration may add to them.
func seedVerbs() []*VerbDefinition {
	sc := func(gerund, base, gs1 string, danger DangerLevel) *VerbDefinition {
		return &VerbDefinition{
			ID:          "verb:" + gerund,
			Gerund:      gerund,
			BaseForm:    base,
			Category:    CategorySupplyChain,
			GS1Step:     gs1,
			DangerLevel: danger,
		}
	}

	verbs := []*VerbDefinition{
		// 37 supply-chain action verbs.
		sc("ordering", "order", "", DangerSafe),
		sc("sourcing", "source", "", DangerSafe),
		sc("procuring", "procure", "", DangerLow),
		sc("receiving", "receive", "receiving", DangerSafe),
		sc("inspecting", "inspect", "inspecting", DangerSafe),
		sc("storing", "store", "storing", DangerSafe),
		sc("picking", "pick", "picking", DangerSafe),
		sc("packing", "pack", "packing", DangerSafe),
		sc("labeling", "label", "", DangerSafe),
		sc("palletizing", "palletize", "", DangerLow),
		sc("loading", "load", "loading", DangerMedium),
		sc("unloading", "unload", "unloading", DangerMedium),
		sc("staging", "stage", "staging_outbound", DangerSafe),
		sc("shipping", "ship", "shipping", DangerMedium),
		sc("transporting", "transport", "transporting", DangerMedium),
		sc("delivering", "deliver", "delivering", DangerLow),
		sc("routing", "route", "", DangerSafe),
		sc("tracking", "track", "", DangerSafe),
		sc("tracing", "trace", "", DangerSafe),
		sc("counting", "count", "cycle_counting", DangerSafe),
		sc("auditing", "audit", "", DangerLow),
		sc("forecasting", "forecast", "", DangerSafe),
		sc("planning", "plan", "", DangerSafe),
		sc("scheduling", "schedule", "", DangerSafe),
		sc("replenishing", "replenish", "", DangerLow),
		sc("allocating", "allocate", "", DangerLow),
		sc("reserving", "reserve", "reserving", DangerLow),
		sc("consolidating", "consolidate", "", DangerLow),
		sc("repackaging", "repackage", "repackaging", DangerLow),
		sc("returning", "return", "", DangerLow),
		sc("repairing", "repair", "repairing", DangerMedium),
		sc("refurbishing", "refurbish", "", DangerMedium),
		sc("recycling", "recycle", "recycling", DangerMedium),
		sc("quarantining", "quarantine", "holding", DangerMedium),
		sc("recalling", "recall", "", DangerHigh),
		sc("disposing", "dispose", "disposing", DangerHigh),
		sc("destroying", "destroy", "destroying", DangerCritical),
	}

	// The two destructive verbs are approval-gated.
	for _, v := range verbs {
		if v.Gerund == "disposing" || v.Gerund == "destroying" {
			v.RequiresApproval = true
		}
	}

	x := func(gerund, base, category string, danger DangerLevel, required ...string) *VerbDefinition {
		return &VerbDefinition{
			ID:           "verb:" + gerund,
			Gerund:       gerund,
			BaseForm:     base,
			Category:     category,
			DangerLevel:  danger,
			RequiredRole: required,
		}
	}

	verbs = append(verbs,
		// Knowledge actions.
		x("reading", "read", CategoryKnowledge, DangerSafe),
		x("writing", "write", CategoryKnowledge, DangerSafe),
		x("researching", "research", CategoryKnowledge, DangerSafe),
		x("summarizing", "summarize", CategoryKnowledge, DangerSafe),

		// Business actions.
		x("managing", "manage", CategoryBusiness, DangerLow, "manager", "finance_manager"),
		x("approving", "approve", CategoryBusiness, DangerMedium, "manager", "finance_manager"),
		x("negotiating", "negotiate", CategoryBusiness, DangerLow, "manager", "lawyer"),
		x("hiring", "hire", CategoryBusiness, DangerMedium, "manager"),

		// Technology actions.
		x("coding", "code", CategoryTechnology, DangerSafe),
		x("debugging", "debug", CategoryTechnology, DangerSafe),
		x("reviewing", "review", CategoryTechnology, DangerSafe),
		x("architecting", "architect", CategoryTechnology, DangerLow),
		x("deploying", "deploy", CategoryTechnology, DangerHigh, "devops_engineer", "senior_developer"),
		x("monitoring", "monitor", CategoryTechnology, DangerSafe),

		// Finance actions.
		x("accounting", "account", CategoryFinance, DangerLow, "accountant", "finance_manager"),
		x("invoicing", "invoice", CategoryFinance, DangerLow, "accountant", "finance_manager"),
		x("reconciling", "reconcile", CategoryFinance, DangerLow),
		x("budgeting", "budget", CategoryFinance, DangerLow),
		x("investing", "invest", CategoryFinance, DangerHigh, "finance_manager"),

		// Medical actions.
		x("diagnosing", "diagnose", CategoryMedical, DangerHigh, "doctor"),
		x("prescribing", "prescribe", CategoryMedical, DangerCritical, "doctor"),
		x("treating", "treat", CategoryMedical, DangerHigh, "doctor", "nurse"),
		x("operating", "operate", CategoryMedical, DangerCritical, "doctor"),
	)

	// Operating on a patient is approval-gated like the destructive
	// supply-chain verbs.
	for _, v := range verbs {
		if v.Gerund == "operating" {
			v.RequiresApproval = true
		}
	}

	return verbs
}
