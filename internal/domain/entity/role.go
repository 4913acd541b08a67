package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants, seeded by the first migration
const (
	RoleIDAdmin     = 1
	RoleIDClient    = 2
	RoleIDTherapist = 3
	RoleIDFriend    = 4
)

// RoleNames constants
const (
	RoleAdmin     = "admin"
	RoleClient    = "client"
	RoleTherapist = "therapist"
	RoleFriend    = "friend"
)

var roleNames = map[int]string{
	RoleIDAdmin:     RoleAdmin,
	RoleIDClient:    RoleClient,
	RoleIDTherapist: RoleTherapist,
	RoleIDFriend:    RoleFriend,
}

// RoleNameByID returns "" for unknown ids.
func RoleNameByID(id int) string {
	return roleNames[id]
}

// RoleIDByName returns 0 for unknown names.
func RoleIDByName(name string) int {
	for id, n := range roleNames {
		if n == name {
			return id
		}
	}
	return 0
}

// IsProvider reports whether the role offers sessions (therapists and friends).
func IsProvider(roleID int) bool {
	return roleID == RoleIDTherapist || roleID == RoleIDFriend
}
