package models

import "fmt"

type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
)

// ParseRole defaults an empty name to attendee.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case "":
		return RoleAttendee, nil
	case RoleAttendee, RoleOrganizer:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}
