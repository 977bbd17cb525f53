package helpers

// Marketplace roles, resolved per-request from the profile row and the
// staff directory.
const (
	RoleStudent       = "student"
	RoleVendor        = "vendor"
	RolePrintAdmin    = "print_admin"
	RolePlatformAdmin = "platform_admin"
)

type EnhancedClaims struct {
	*CustomClaims
	Role     string `json:"role"`
	UserID   string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	// Shop is set only for vendor accounts: the shop this staff login runs.
	Shop string `json:"shop,omitempty"`
}

func (ec *EnhancedClaims) IsVendor() bool {
	return ec.Role == RoleVendor
}

func (ec *EnhancedClaims) IsPrintAdmin() bool {
	return ec.Role == RolePrintAdmin
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == RolePlatformAdmin
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return RoleStudent
	}
	return ec.Role
}
