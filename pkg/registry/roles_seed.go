package registry

// seedRoles is the canonical role catalog loaded at process start.
// senior_developer inherits from developer, finance_manager from manager.
func seedRoles() []*RoleDefinition {
	r := func(name string, caps []string) *RoleDefinition {
		return &RoleDefinition{
			ID:           "role:" + name,
			Name:         name,
			Capabilities: caps,
		}
	}

	admin := r("admin", []string{Wildcard})
	admin.Description = "Unrestricted access to every verb."

	developer := r("developer", []string{"coding", "debugging", "reading", "writing"})
	// Plain developers never deploy; the capability lives on senior_developer.
	developer.ForbiddenVerbs = []string{"deploying"}

	senior := r("senior_developer", []string{"deploying", "architecting", "reviewing"})
	senior.ParentRole = "developer"

	manager := r("manager", []string{"managing", "approving", "planning", "hiring", "reading"})

	finance := r("finance_manager", []string{"approving", "budgeting", "investing", "auditing"})
	finance.ParentRole = "manager"

	nurse := r("nurse", []string{"treating", "monitoring", "reading"})
	nurse.ForbiddenVerbs = []string{"prescribing", "operating"}

	return []*RoleDefinition{
		admin,
		r("accountant", []string{"accounting", "invoicing", "reconciling", "auditing", "reading"}),
		developer,
		senior,
		r("doctor", []string{"diagnosing", "prescribing", "treating", "operating", "reading", "writing"}),
		nurse,
		r("lawyer", []string{"negotiating", "researching", "reading", "writing"}),
		manager,
		finance,
		r("devops_engineer", []string{"deploying", "monitoring", "debugging", "auditing"}),
		r("viewer", []string{"reading"}),
	}
}
