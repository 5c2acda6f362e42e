package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
	"github.com/arjun8815/spinwise-erp/internal/domain/rbac"
)

// ProfileRepository — интерфейс CRUD для таблицы profiles.
type ProfileRepository interface {
	// Create создаёт профиль. ErrConflict — ID или email заняты.
	Create(ctx context.Context, p *model.Profile) error
	// GetByID возвращает профиль по ID пользователя.
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	// List возвращает профили (новые первыми), опционально с фильтром по роли.
	List(ctx context.Context, role *rbac.Role) ([]*model.Profile, error)
	// Update применяет изменения и возвращает обновлённый профиль.
	Update(ctx context.Context, id string, upd model.ProfileUpdate) (*model.Profile, error)
}

// ProfileTransactor выполняет fn над ProfileRepository в одной транзакции:
// ошибка fn откатывает все изменения профилей.
type ProfileTransactor interface {
	WithinTx(ctx context.Context, fn func(repo ProfileRepository) error) error
}

// profileRepo — реализация ProfileRepository для PostgreSQL.
type profileRepo struct {
	db DBTX
}

// NewProfileRepository создаёт репозиторий профилей.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, email, first_name, last_name, phone, preferred_language, role, created_at, updated_at`

// scanProfile сканирует строку profiles.
func scanProfile(row pgx.Row) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(
		&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Phone,
		&p.PreferredLanguage, &p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, email, first_name, last_name, phone, preferred_language, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.Email, p.FirstName, p.LastName, p.Phone, p.PreferredLanguage, p.Role,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return pgError(err, "ошибка создания профиля")
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, pgError(err, "ошибка получения профиля")
	}
	return p, nil
}

func (r *profileRepo) List(ctx context.Context, role *rbac.Role) ([]*model.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM profiles
		WHERE ($1::text IS NULL OR role = $1)
		ORDER BY created_at DESC, email`, profileColumns)

	var roleArg *string
	if role != nil {
		s := string(*role)
		roleArg = &s
	}

	rows, err := r.db.Query(ctx, query, roleArg)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка профилей: %w", err)
	}
	defer rows.Close()

	var result []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования профиля: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *profileRepo) Update(ctx context.Context, id string, upd model.ProfileUpdate) (*model.Profile, error) {
	query := fmt.Sprintf(`
		UPDATE profiles SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			preferred_language = COALESCE($5, preferred_language),
			role = COALESCE($6, role),
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, profileColumns)

	var lang, role *string
	if upd.PreferredLanguage != nil {
		s := string(*upd.PreferredLanguage)
		lang = &s
	}
	if upd.Role != nil {
		s := string(*upd.Role)
		role = &s
	}

	p, err := scanProfile(r.db.QueryRow(ctx, query,
		id, upd.FirstName, upd.LastName, upd.Phone, lang, role,
	))
	if err != nil {
		return nil, pgError(err, "ошибка обновления профиля")
	}
	return p, nil
}

// WithinTx выполняет fn с репозиторием профилей внутри одной транзакции.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(repo ProfileRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProfileRepository(tx))
	})
}
