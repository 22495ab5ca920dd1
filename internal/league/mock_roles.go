package league

// MockRoleChecker is a test double for RoleChecker backed by a static map of
// userID to role IDs.
type MockRoleChecker struct {
	Roles map[string][]string
	Err   error
}

func (m *MockRoleChecker) HasRole(userID, roleID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, r := range m.Roles[userID] {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}
