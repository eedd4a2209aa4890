package shared

// Role enumerates staff roles resolved by the access boundary.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

// RoleSet expresses an operation's required roles as data.
type RoleSet map[Role]struct{}

// Roles builds a RoleSet from the given roles.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether the role is a member of the set.
func (s RoleSet) Allows(r Role) bool {
	_, ok := s[r]
	return ok
}

// Common capability sets consumed at route mount time.
var (
	// CatalogWriters may create or update products, categories and suppliers.
	CatalogWriters = Roles(RoleAdmin, RoleManager)
	// Deleters may hard-delete catalog entities.
	Deleters = Roles(RoleAdmin)
	// Sellers may create sales, returns and stock adjustments.
	Sellers = Roles(RoleAdmin, RoleManager, RoleCashier)
)
