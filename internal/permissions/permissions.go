// Package permissions centralizes every role and ownership check so room
// administration endpoints share one evaluation path.
package permissions

import (
	"github.com/ravin009/chatfun-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinRoomCreationRating is the rating a non-privileged user needs before
// they may create rooms.
const MinRoomCreationRating = 1000

var privilegedRoles = []string{
	models.RoleAdmin,
	models.RoleModerator,
	models.RoleSuperMod,
	models.RoleCoAdmin,
}

// IsPrivileged reports whether any of the roles is above a plain user.
func IsPrivileged(roles []string) bool {
	for _, r := range roles {
		for _, p := range privilegedRoles {
			if r == p {
				return true
			}
		}
	}
	return false
}

// CanCreateRoom allows room creation for privileged users or users whose
// rating meets the minimum threshold.
func CanCreateRoom(user *models.User) bool {
	return IsPrivileged(user.Roles) || user.Rating >= MinRoomCreationRating
}

// CanManageRoom allows room administration (ownership transfer, privacy,
// color, read-only lists, invitations) for the creator, the owner or an
// Admin.
func CanManageRoom(user *models.User, room *models.Room) bool {
	return room.Creator == user.ID || room.Owner == user.ID || user.HasRole(models.RoleAdmin)
}

// CanDeleteRoom allows deletion only for the creator or an Admin. A
// transferred owner cannot delete a room out from under its creator.
func CanDeleteRoom(user *models.User, room *models.Room) bool {
	return room.Creator == user.ID || user.HasRole(models.RoleAdmin)
}

// CanAccessPrivateRoom reports whether the user may join or post in a
// private room: creator, owner, or on the accessed list.
func CanAccessPrivateRoom(userID primitive.ObjectID, room *models.Room) bool {
	if !room.IsPrivate {
		return true
	}
	return room.Creator == userID || room.Owner == userID || room.HasAccess(userID)
}

// CanMarkReadOnly reports whether the actor may toggle read-only state on
// the target in the room. Privileged targets and the room owner/creator
// are protected from everyone except an Admin.
func CanMarkReadOnly(actor, target *models.User, room *models.Room) bool {
	if !CanManageRoom(actor, room) {
		return false
	}
	if actor.HasRole(models.RoleAdmin) {
		return true
	}
	if IsPrivileged(target.Roles) {
		return false
	}
	if room.Creator == target.ID || room.Owner == target.ID {
		return false
	}
	return true
}
