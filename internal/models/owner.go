package models

import "fmt"

// Owner is the owner of a reference record: either the system or a single user.
// The zero value is the system owner.
type Owner struct {
	userID uint64
}

// SystemOwner returns the owner of shared reference data
func SystemOwner() Owner {
	return Owner{}
}

// UserOwner returns the owner for a user id
func UserOwner(id uint64) Owner {
	return Owner{userID: id}
}

// OwnerOf maps a nullable user_id column to an Owner
func OwnerOf(userID *uint64) Owner {
	if userID == nil || *userID == 0 {
		return SystemOwner()
	}
	return UserOwner(*userID)
}

// IsSystem reports whether the record is system owned
func (o Owner) IsSystem() bool {
	return o.userID == 0
}

// UserID returns the owning user id, false for the system owner
func (o Owner) UserID() (uint64, bool) {
	return o.userID, o.userID != 0
}

// Column returns the value stored in a nullable user_id column
func (o Owner) Column() *uint64 {
	if o.IsSystem() {
		return nil
	}
	id := o.userID
	return &id
}

func (o Owner) String() string {
	if o.IsSystem() {
		return "system"
	}
	return fmt.Sprintf("user(%d)", o.userID)
}
