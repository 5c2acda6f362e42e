// Пакет repository — хранение данных SpinWise.
// PostgreSQL: SQL-запросы через pgx без ORM. Memory: потокобезопасные
// реализации тех же интерфейсов для SW_STORAGE=memory и тестов.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — запись с таким ключом уже существует.
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// SQLSTATE, которые переводятся в ошибки пакета.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// DBTX — общее для *pgxpool.Pool и pgx.Tx: репозиторий не знает,
// работает ли он внутри транзакции.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner открывает транзакции на пуле.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner создаёт TxRunner.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run выполняет fn в транзакции: ошибка fn откатывает её, иначе commit.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, r.pool, fn); err != nil {
		return fmt.Errorf("транзакция: %w", err)
	}
	return nil
}

// pgError переводит ошибку pgx в ErrNotFound / ErrConflict,
// остальные оборачивает описанием операции. nil остаётся nil.
func pgError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return ErrConflict
		case sqlStateForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
