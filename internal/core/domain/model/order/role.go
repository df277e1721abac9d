package order

// Role is the part an organization plays in an order.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleSupplier  Role = "supplier"
	RoleForwarder Role = "forwarder"
	RoleConsignee Role = "consignee"
	RoleAgent     Role = "agent"
	RoleBroker    Role = "broker"
	RoleTrucker   Role = "trucker"
)

// AllRoles returns every role, buyer first.
func AllRoles() []Role {
	return []Role{RoleBuyer, RoleSupplier, RoleForwarder, RoleConsignee, RoleAgent, RoleBroker, RoleTrucker}
}

func (r Role) String() string {
	return string(r)
}
