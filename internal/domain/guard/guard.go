// Пакет guard — решение о допуске к защищённому представлению.
// Decide — чистая функция от состояния сессии; побочные эффекты
// (redirect, страница ожидания) выполняет вызывающий код.
package guard

import (
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// Outcome — результат проверки.
type Outcome int

const (
	// OutcomeWait — сессия ещё загружается: показать нейтральное ожидание,
	// ничего не рендерить и не перенаправлять.
	OutcomeWait Outcome = iota
	// OutcomeSignIn — сессии нет: redirect на вход с сохранением исходного пути.
	OutcomeSignIn
	// OutcomeHome — роль не входит в допустимый набор: redirect на главную.
	OutcomeHome
	// OutcomeRender — доступ разрешён.
	OutcomeRender
	// OutcomeProfileUnavailable — сессия есть, профиль не получен
	// (только при политике NullRoleDeny).
	OutcomeProfileUnavailable
)

// String возвращает имя исхода (для логов и метрик).
func (o Outcome) String() string {
	switch o {
	case OutcomeWait:
		return "wait"
	case OutcomeSignIn:
		return "sign_in"
	case OutcomeHome:
		return "home"
	case OutcomeRender:
		return "render"
	case OutcomeProfileUnavailable:
		return "profile_unavailable"
	default:
		return "unknown"
	}
}

// NullRolePolicy — поведение при наличии сессии и отсутствии профиля.
type NullRolePolicy int

const (
	// NullRoleAllow — пропустить (fail-open).
	NullRoleAllow NullRolePolicy = iota
	// NullRoleDeny — отказать (fail-closed).
	NullRoleDeny
)

// Input — состояние, по которому принимается решение.
type Input struct {
	// Loading — загрузка сессии/профиля ещё не завершена.
	Loading bool
	// SessionPresent — есть ли текущая Identity.
	SessionPresent bool
	// ProfileRole — роль из профиля; nil, если профиль не получен.
	ProfileRole *rbac.Role
	// Allowed — допустимые роли; пустой набор — все роли.
	Allowed rbac.RoleSet
}

// Guard — проверка с зафиксированной политикой для null-роли.
type Guard struct {
	policy NullRolePolicy
}

// New создаёт Guard с указанной политикой.
func New(policy NullRolePolicy) *Guard {
	return &Guard{policy: policy}
}

// Policy возвращает политику для null-роли.
func (g *Guard) Policy() NullRolePolicy {
	return g.policy
}

// Decide вычисляет исход. Шаги проверяются строго по порядку:
// загрузка → наличие сессии → членство роли.
func (g *Guard) Decide(in Input) Outcome {
	return Decide(in, g.policy)
}

// Decide — функция-ядро без состояния.
func Decide(in Input, policy NullRolePolicy) Outcome {
	if in.Loading {
		return OutcomeWait
	}
	if !in.SessionPresent {
		return OutcomeSignIn
	}
	if in.ProfileRole == nil {
		if policy == NullRoleDeny {
			return OutcomeProfileUnavailable
		}
		return OutcomeRender
	}
	if !in.Allowed.Contains(*in.ProfileRole) {
		return OutcomeHome
	}
	return OutcomeRender
}
