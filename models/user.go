package models

// UserRole приходит в claim "role" токена. Пользователей движок не хранит:
// токены выпускает внешний сервис авторизации.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RoleViewer    UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleViewer:
		return true
	}
	return false
}
