package domain

import "testing"

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleCEO, RoleAdmin, RoleAccountant, RoleTaxAccountant, RoleEmployee, RoleSuperAdmin} {
		if !r.Valid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	if Role("MANAGER").Valid() {
		t.Fatalf("expected unknown role to be invalid")
	}
}

func TestCapabilitiesFor_UnknownRoleHasNone(t *testing.T) {
	caps := CapabilitiesFor(Role("whatever"))
	if caps != (Capabilities{}) {
		t.Fatalf("expected empty capabilities, got %+v", caps)
	}
}

func TestCapabilitiesFor_RoleTable(t *testing.T) {
	if !CapabilitiesFor(RoleCEO).ManageSubscription {
		t.Fatalf("CEO should manage subscriptions")
	}
	if !CapabilitiesFor(RoleAdmin).ManageUsers {
		t.Fatalf("ADMIN should manage users")
	}
	if CapabilitiesFor(RoleEmployee).ManageUsers {
		t.Fatalf("EMPLOYEE should not manage users")
	}
	if CapabilitiesFor(RoleTaxAccountant).SubmitReports {
		t.Fatalf("TAX_ACCOUNTANT should not submit reports")
	}
	if CapabilitiesFor(RoleSuperAdmin).SwitchCompany {
		t.Fatalf("SUPERADMIN operates outside company scope")
	}
}

func TestNavSections(t *testing.T) {
	super := NavSections(RoleSuperAdmin)
	if len(super) != 2 || super[0] != NavUsers || super[1] != NavSubscriptions {
		t.Fatalf("unexpected SUPERADMIN nav: %v", super)
	}

	tax := NavSections(RoleTaxAccountant)
	if len(tax) != 1 || tax[0] != NavTaxSummary {
		t.Fatalf("unexpected TAX_ACCOUNTANT nav: %v", tax)
	}

	employee := NavSections(RoleEmployee)
	if len(employee) != 1 || employee[0] != NavExpenses {
		t.Fatalf("unexpected EMPLOYEE nav: %v", employee)
	}

	admin := NavSections(RoleAdmin)
	found := map[NavSection]bool{}
	for _, s := range admin {
		found[s] = true
	}
	for _, want := range []NavSection{NavUsers, NavSubscriptions, NavCards, NavApprovals} {
		if !found[want] {
			t.Fatalf("ADMIN nav missing %s: %v", want, admin)
		}
	}

	if NavSections(Role("unknown")) != nil {
		t.Fatalf("unknown role should have no nav sections")
	}
}
