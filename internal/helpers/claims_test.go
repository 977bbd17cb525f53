package helpers

import "testing"

func TestGetSafeRoleDefaultsToStudent(t *testing.T) {
	ec := &EnhancedClaims{}
	if got := ec.GetSafeRole(); got != RoleStudent {
		t.Fatalf("GetSafeRole = %q, want student", got)
	}
	ec.Role = RoleVendor
	if got := ec.GetSafeRole(); got != RoleVendor {
		t.Fatalf("GetSafeRole = %q, want vendor", got)
	}
}

func TestRoleChecks(t *testing.T) {
	vendor := &EnhancedClaims{Role: RoleVendor, Shop: "Night Canteen"}
	if !vendor.IsVendor() || vendor.IsAdmin() || vendor.IsPrintAdmin() {
		t.Fatal("vendor role misread")
	}
	if !vendor.HasRole(RoleVendor) || vendor.HasRole(RolePlatformAdmin) {
		t.Fatal("HasRole misread")
	}

	admin := &EnhancedClaims{Role: RolePlatformAdmin}
	if !admin.IsAdmin() || admin.IsVendor() {
		t.Fatal("admin role misread")
	}
}

func TestIsOwner(t *testing.T) {
	ec := &EnhancedClaims{UserID: "abc-123"}
	if !ec.IsOwner("abc-123") || ec.IsOwner("def-456") {
		t.Fatal("ownership check misread")
	}
}
