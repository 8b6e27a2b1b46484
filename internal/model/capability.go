package model

// Capability is a coarse-grained permission over one procurement area.
// The per-operation role checks are driven by the RoleCapabilities table
// below instead of ad-hoc boolean checks inside each service.
type Capability string

const (
	CapManageRequisitions Capability = "requisitions.manage"
	CapManageVendors      Capability = "vendors.manage"
	CapManageRFQs         Capability = "rfqs.manage"
	CapManagePOs          Capability = "purchase_orders.manage"
	CapManageReceiving    Capability = "receiving.manage"
	CapManageInvoices     Capability = "invoices.manage"
	CapProcessPayments    Capability = "payments.process"
	CapApproveDocuments   Capability = "approvals.approve"
	CapManageUsers        Capability = "users.manage"
	CapViewAudit          Capability = "audit.read"
)

// RoleCapabilities maps each role to its capability set. ADMIN is handled
// in RoleHasCapability rather than enumerated here.
var RoleCapabilities = map[string][]Capability{
	RoleCEO: {
		CapApproveDocuments, CapViewAudit,
	},
	RoleCFO: {
		CapApproveDocuments, CapManageInvoices, CapProcessPayments, CapViewAudit,
	},
	RoleProcurementOfficer: {
		CapManageRequisitions, CapManageVendors, CapManageRFQs,
		CapManagePOs, CapManageReceiving, CapManageInvoices, CapApproveDocuments,
	},
	RoleOperationsManager: {
		CapManageRequisitions, CapManageReceiving, CapApproveDocuments, CapViewAudit,
	},
	RoleDepartmentHead: {
		CapManageRequisitions, CapApproveDocuments,
	},
	RoleStaff: {
		CapManageRequisitions,
	},
}

// RoleHasCapability reports whether role grants cap.
func RoleHasCapability(role string, cap Capability) bool {
	if role == RoleAdmin {
		return true
	}
	for _, c := range RoleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}
