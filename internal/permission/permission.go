// Package permission holds the static role -> capability table and the
// ownership gates. The table is immutable configuration baked in at compile
// time; there is no runtime mutation.
package permission

import "fmt"

// Roles known to the console.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleEditor  = "editor"
	RoleViewer  = "viewer"
)

// Verbs composing capability names, e.g. COUPON_CREATE.
const (
	VerbRead   = "READ"
	VerbCreate = "CREATE"
	VerbUpdate = "UPDATE"
	VerbDelete = "DELETE"
	VerbRedeem = "REDEEM"
)

// Capability builds the capability name for a resource prefix and verb.
func Capability(prefix, verb string) string {
	return fmt.Sprintf("%s_%s", prefix, verb)
}

// ownedPrefixes are the protected resources that carry created_by.
var ownedPrefixes = []string{"COUPON", "SEO", "WEBSITE"}

// grants maps role -> set of capabilities. Admin is handled as a wildcard in
// Has so new capabilities never need a table edit for admins.
var grants = buildGrants()

func buildGrants() map[string]map[string]bool {
	g := map[string]map[string]bool{
		RoleManager: {},
		RoleEditor:  {},
		RoleViewer:  {},
	}
	for _, p := range ownedPrefixes {
		// Managers get full control of protected resources.
		for _, verb := range []string{VerbRead, VerbCreate, VerbUpdate, VerbDelete} {
			g[RoleManager][Capability(p, verb)] = true
		}
		// Editors may read and create; updates and deletes fall back to the
		// ownership gate.
		g[RoleEditor][Capability(p, VerbRead)] = true
		g[RoleEditor][Capability(p, VerbCreate)] = true
		// Viewers are read-only.
		g[RoleViewer][Capability(p, VerbRead)] = true
	}
	g[RoleManager][Capability("COUPON", VerbRedeem)] = true
	g[RoleEditor][Capability("COUPON", VerbRedeem)] = true
	return g
}

// Has reports whether role is granted capability.
func Has(role, capability string) bool {
	if role == RoleAdmin {
		return true
	}
	caps, ok := grants[role]
	if !ok {
		return false
	}
	return caps[capability]
}

// CanUpdate reports whether the actor may update a record: either the role
// carries the blanket update capability or the actor owns the record.
func CanUpdate(role, prefix, ownerID, actorID string) bool {
	if Has(role, Capability(prefix, VerbUpdate)) {
		return true
	}
	return ownerID != "" && ownerID == actorID
}

// CanDelete mirrors CanUpdate for deletes.
func CanDelete(role, prefix, ownerID, actorID string) bool {
	if Has(role, Capability(prefix, VerbDelete)) {
		return true
	}
	return ownerID != "" && ownerID == actorID
}
