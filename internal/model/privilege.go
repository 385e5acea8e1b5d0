package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "transfer:approve"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Approve Transfer"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Inventory ledger
	{Code: "inventory:view", Name: "View Inventory"},
	{Code: "inventory:adjust", Name: "Adjust Inventory"},
	// Transfer workflow
	{Code: "transfer:view", Name: "View Transfer"},
	{Code: "transfer:request", Name: "Request Transfer"},
	{Code: "transfer:approve", Name: "Approve Transfer"},
	{Code: "transfer:ship", Name: "Ship Transfer"},
	{Code: "transfer:receive", Name: "Receive Transfer"},
	{Code: "transfer:cancel", Name: "Cancel Transfer"},
	// One-time permissions
	{Code: "permission:grant", Name: "Grant One-Time Permission"},
	// Audit chain
	{Code: "audit:view", Name: "View Audit Events"},
	{Code: "audit:verify", Name: "Verify Audit Chain"},
}
