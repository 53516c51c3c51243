package helpers

type EnhancedClaims struct {
	*CustomClaims
	Role           string   `json:"role"`
	UserID         string   `json:"id"`
	Email          string   `json:"email,omitempty"`
	DisplayName    string   `json:"display_name,omitempty"`
	GraduationYear int      `json:"graduation_year,omitempty"`
	Preferences    []string `json:"preferences,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

// Helper methods for role checking
func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "student"
	}
	return ec.Role
}
