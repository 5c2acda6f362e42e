// Пакет rbac — роли пользователей SpinWise и наборы допустимых ролей.
// Роли образуют закрытое перечисление {admin, manager, employee}
// без наследования: доступ определяется только членством в наборе.
package rbac

import (
	"fmt"
	"sort"
	"strings"
)

// Role — роль пользователя.
type Role string

// Допустимые роли.
const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// roleOrder — порядок вывода ролей (списки, фильтры, сообщения).
var roleOrder = map[Role]int{
	RoleAdmin:    0,
	RoleManager:  1,
	RoleEmployee: 2,
}

// AllRoles возвращает все допустимые роли в стабильном порядке.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleEmployee}
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleOrder[Role(role)]
	return ok
}

// ParseRole преобразует строку в Role.
// Регистр и пробелы по краям игнорируются.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleOrder[r]; !ok {
		return "", fmt.Errorf("некорректная роль %q: допустимые значения — admin, manager, employee", s)
	}
	return r, nil
}

// Valid сообщает, входит ли роль в перечисление.
func (r Role) Valid() bool {
	_, ok := roleOrder[r]
	return ok
}

// String возвращает строковое представление роли.
func (r Role) String() string {
	return string(r)
}

// RoleSet — набор ролей, допущенных к представлению.
// Пустой набор означает «все три роли».
type RoleSet struct {
	roles map[Role]struct{}
}

// NewRoleSet создаёт набор из перечисленных ролей.
// Недопустимые значения отбрасываются: они никогда не дают доступа.
func NewRoleSet(roles ...Role) RoleSet {
	s := RoleSet{roles: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		if r.Valid() {
			s.roles[r] = struct{}{}
		}
	}
	return s
}

// AnyRole — набор из всех ролей.
func AnyRole() RoleSet {
	return NewRoleSet(AllRoles()...)
}

// Contains проверяет членство роли в наборе.
// Недопустимая роль не входит ни в один набор, в том числе в пустой.
func (s RoleSet) Contains(r Role) bool {
	if !r.Valid() {
		return false
	}
	if len(s.roles) == 0 {
		return true
	}
	_, ok := s.roles[r]
	return ok
}

// Roles возвращает роли набора в стабильном порядке.
// Для пустого набора — все роли.
func (s RoleSet) Roles() []Role {
	if len(s.roles) == 0 {
		return AllRoles()
	}
	out := make([]Role, 0, len(s.roles))
	for r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return roleOrder[out[i]] < roleOrder[out[j]] })
	return out
}

// String возвращает роли через « или » (для сообщений об ошибках).
func (s RoleSet) String() string {
	roles := s.Roles()
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, " или ")
}
