package domain

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName,omitempty"`
	LastName     string   `json:"lastName,omitempty"`
	NickName     string   `json:"nickName,omitempty"`
	ProfileImage string   `json:"profileImage,omitempty"`
	Role         UserRole `json:"role"`
	IsVerified   bool     `json:"isVerified"`
}
