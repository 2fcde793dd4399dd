package auth

// Identity is the authenticated caller, produced once at token verification
// and passed to handlers through the request context. The Role tag determines
// which of the optional fields are set.
type Identity struct {
	ID    string
	Role  string
	MatNo string // students only
	Email string // lecturers and admins
}

// IsStudent reports whether the caller authenticated as a student.
func (id Identity) IsStudent() bool { return id.Role == RoleStudent }

// IsLecturer reports whether the caller authenticated as a lecturer.
func (id Identity) IsLecturer() bool { return id.Role == RoleLecturer }

func identityFromClaims(c Claims) Identity {
	return Identity{
		ID:    c.Subject,
		Role:  c.Role,
		MatNo: c.MatNo,
		Email: c.Email,
	}
}
