package entities

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

// DefaultAccessLevel is assigned to users and catalog entries when the form
// leaves the level empty.
const DefaultAccessLevel = 1

type User struct {
	ID           string   `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name         string   `gorm:"size:256;not null" bson:"name" json:"name"`
	Username     string   `gorm:"uniqueIndex;size:64;not null" bson:"username" json:"username"`
	PasswordHash string   `gorm:"size:255;not null" bson:"password_hash" json:"-"`
	Role         UserRole `gorm:"size:20;not null;default:member" bson:"role" json:"role"`
	AccessLevel  int      `gorm:"not null" bson:"access_level" json:"access_level"`
	Timestamps   `bson:",inline"`
}

func (u *User) GetID() string       { return u.ID }
func (u *User) SetID(id string)     { u.ID = id }
func (u *User) GetAccessLevel() int { return u.AccessLevel }
func (u *User) DisplayName() string { return u.Username }
func (u *User) IsAdmin() bool       { return u.Role == UserRoleAdmin }
