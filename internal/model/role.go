package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, WAREHOUSE_MANAGER, STORE_STAFF
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleMasterAdmin      = "MASTER_ADMIN"
	RoleWarehouseManager = "WAREHOUSE_MANAGER"
	RoleStoreStaff       = "STORE_STAFF"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleWarehouseManager,
		Name:        "Warehouse Manager",
		Description: "Approves and ships transfers, adjusts warehouse stock",
	},
	{
		Code:        RoleStoreStaff,
		Name:        "Store Staff",
		Description: "Requests and receives transfers",
	},
}
