package domain

// Role es el conjunto cerrado de roles de la plataforma.
type Role string

const (
	RoleCEO           Role = "CEO"
	RoleAdmin         Role = "ADMIN"
	RoleAccountant    Role = "ACCOUNTANT"
	RoleTaxAccountant Role = "TAX_ACCOUNTANT"
	RoleEmployee      Role = "EMPLOYEE"
	RoleSuperAdmin    Role = "SUPERADMIN"
)

// Valid reporta si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool {
	switch r {
	case RoleCEO, RoleAdmin, RoleAccountant, RoleTaxAccountant, RoleEmployee, RoleSuperAdmin:
		return true
	}
	return false
}

// Capabilities es la tabla de permisos derivada del rol. Se resuelve una sola
// vez por sesion en lugar de comparar strings de rol en cada punto de uso.
type Capabilities struct {
	ManageUsers        bool
	ManageCompanyCards bool
	ManageSubscription bool
	ViewTaxSummary     bool
	ApproveReports     bool
	SubmitReports      bool
	SwitchCompany      bool
}

var capabilityTable = map[Role]Capabilities{
	RoleCEO: {
		ManageUsers:        true,
		ManageCompanyCards: true,
		ManageSubscription: true,
		ViewTaxSummary:     true,
		ApproveReports:     true,
		SubmitReports:      true,
		SwitchCompany:      true,
	},
	RoleAdmin: {
		ManageUsers:        true,
		ManageCompanyCards: true,
		ManageSubscription: true,
		ViewTaxSummary:     true,
		ApproveReports:     true,
		SubmitReports:      true,
		SwitchCompany:      true,
	},
	RoleAccountant: {
		ViewTaxSummary: true,
		ApproveReports: true,
		SubmitReports:  true,
		SwitchCompany:  true,
	},
	RoleTaxAccountant: {
		ViewTaxSummary: true,
		SwitchCompany:  true,
	},
	RoleEmployee: {
		SubmitReports: true,
		SwitchCompany: true,
	},
	RoleSuperAdmin: {
		ManageUsers:        true,
		ManageSubscription: true,
	},
}

// CapabilitiesFor devuelve la tabla de permisos del rol. Un rol desconocido
// no recibe ningun permiso.
func CapabilitiesFor(r Role) Capabilities {
	return capabilityTable[r]
}

// NavSection identifica una seccion de navegacion visible en el cliente.
type NavSection string

const (
	NavExpenses      NavSection = "expenses"
	NavApprovals     NavSection = "approvals"
	NavCards         NavSection = "cards"
	NavTaxSummary    NavSection = "tax-summary"
	NavUsers         NavSection = "users"
	NavSubscriptions NavSection = "subscriptions"
)

// NavSections devuelve las secciones visibles para un rol, en orden estable.
// SUPERADMIN ve una navegacion reducida de administracion; TAX_ACCOUNTANT una
// vista restringida orientada a lectura.
func NavSections(r Role) []NavSection {
	caps := CapabilitiesFor(r)
	if r == RoleSuperAdmin {
		return []NavSection{NavUsers, NavSubscriptions}
	}
	var sections []NavSection
	if caps.SubmitReports {
		sections = append(sections, NavExpenses)
	}
	if caps.ApproveReports {
		sections = append(sections, NavApprovals)
	}
	if caps.ManageCompanyCards {
		sections = append(sections, NavCards)
	}
	if caps.ViewTaxSummary {
		sections = append(sections, NavTaxSummary)
	}
	if caps.ManageUsers {
		sections = append(sections, NavUsers)
	}
	if caps.ManageSubscription {
		sections = append(sections, NavSubscriptions)
	}
	return sections
}
