package models

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	UserID      string `json:"user_id" yaml:"user_id"`
	Username    string `json:"username" yaml:"username"`
	Role        string `json:"role" yaml:"role"`
	BranchID    string `json:"branch_id,omitempty" yaml:"branch_id"`
	FullName    string `json:"full_name,omitempty" yaml:"full_name"`
	Email       string `json:"email,omitempty" yaml:"email"`
	PhoneNumber string `json:"phone_number,omitempty" yaml:"phone_number"`
	Caption     string `json:"caption,omitempty" yaml:"caption"`
	AvatarURL   string `json:"avatar_url,omitempty" yaml:"avatar_url"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
