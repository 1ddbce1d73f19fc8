package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/menu"
	"github.com/antonminaichev/foodorder/internal/types/order"
	"github.com/antonminaichev/foodorder/internal/types/user"
	usersvc "github.com/antonminaichev/foodorder/internal/user"
)

const uniqueViolation = "23505"

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	if err := s.db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS menu_items (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL,
            price NUMERIC(10,2) NOT NULL CHECK (price > 0),
            category TEXT NOT NULL,
            image TEXT NOT NULL,
            size TEXT NOT NULL DEFAULT '',
            allergens TEXT NOT NULL DEFAULT '',
            ingredients TEXT NOT NULL DEFAULT '',
            is_vegetarian BOOLEAN NOT NULL DEFAULT FALSE,
            is_spicy BOOLEAN NOT NULL DEFAULT FALSE,
            is_popular BOOLEAN NOT NULL DEFAULT FALSE,
            is_available BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id),
            number TEXT NOT NULL,
            items JSONB NOT NULL,
            subtotal NUMERIC(12,2) NOT NULL,
            tax NUMERIC(12,2) NOT NULL,
            delivery_fee NUMERIC(12,2) NOT NULL,
            discount NUMERIC(12,2) NOT NULL,
            total NUMERIC(12,2) NOT NULL,
            promo_code TEXT NOT NULL DEFAULT '',
            order_type TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            status TEXT NOT NULL,
            status_history JSONB NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            customer_notes TEXT NOT NULL DEFAULT '',
            payment JSONB,
            gateway_order_id TEXT,
            estimated_ready_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS orders_created_idx ON orders (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS orders_gateway_order_idx ON orders (gateway_order_id)`,
		`CREATE INDEX IF NOT EXISTS menu_items_category_idx ON menu_items (category, name)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) Create(ctx context.Context, u *user.User) error {
	q := `INSERT INTO users (login,password_hash,is_admin,created_at) VALUES($1,$2,$3,$4) RETURNING id`
	err := s.db.QueryRowContext(ctx, q, u.Login, u.PasswordHash, u.IsAdmin, u.CreatedAt).Scan(&u.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return usersvc.ErrUserExists
	}
	return err
}

func (s *PostgresStorage) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	u := &user.User{}
	q := `SELECT id,login,password_hash,is_admin,created_at FROM users WHERE login=$1`
	if err := s.db.QueryRowContext(ctx, q, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usersvc.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

const menuColumns = `id, name, description, price, category, image, size, allergens, ingredients,
        is_vegetarian, is_spicy, is_popular, is_available, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row scanner) (*menu.Item, error) {
	var it menu.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.Image,
		&it.Size, &it.Allergens, &it.Ingredients,
		&it.IsVegetarian, &it.IsSpicy, &it.IsPopular, &it.IsAvailable, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *PostgresStorage) CreateMenuItem(ctx context.Context, it *menu.Item) error {
	q := `INSERT INTO menu_items (` + menuColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := s.db.ExecContext(ctx, q,
		it.ID, it.Name, it.Description, it.Price, it.Category, it.Image,
		it.Size, it.Allergens, it.Ingredients,
		it.IsVegetarian, it.IsSpicy, it.IsPopular, it.IsAvailable, it.CreatedAt,
	)
	return err
}

// validID reports whether id can address a UUID primary key; other ids never
// match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *PostgresStorage) FindMenuItem(ctx context.Context, id string) (*menu.Item, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	q := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`
	it, err := scanMenuItem(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return it, err
}

func (s *PostgresStorage) ListMenuItems(ctx context.Context, f menu.Filter) ([]menu.Item, error) {
	where, args := menuWhere(f)
	q := `SELECT ` + menuColumns + ` FROM menu_items WHERE ` + where + ` ORDER BY category, name`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []menu.Item
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func menuWhere(f menu.Filter) (string, []any) {
	conds := []string{"is_available"}
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if f.VegetarianOnly {
		conds = append(conds, "is_vegetarian")
	}
	if f.PopularOnly {
		conds = append(conds, "is_popular")
	}
	return strings.Join(conds, " AND "), args
}

func (s *PostgresStorage) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM menu_items ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) UpdateMenuItem(ctx context.Context, it *menu.Item) error {
	if !validID(it.ID) {
		return apperr.ErrNotFound
	}
	q := `
        UPDATE menu_items
        SET name=$1, description=$2, price=$3, category=$4, image=$5, size=$6, allergens=$7,
            ingredients=$8, is_vegetarian=$9, is_spicy=$10, is_popular=$11, is_available=$12
        WHERE id=$13`
	res, err := s.db.ExecContext(ctx, q,
		it.Name, it.Description, it.Price, it.Category, it.Image, it.Size, it.Allergens,
		it.Ingredients, it.IsVegetarian, it.IsSpicy, it.IsPopular, it.IsAvailable, it.ID,
	)
	return affectedOne(res, err)
}

func (s *PostgresStorage) DeleteMenuItem(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id=$1`, id)
	return affectedOne(res, err)
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

const orderColumns = `id, user_id, number, items, subtotal, tax, delivery_fee, discount, total, promo_code,
        order_type, payment_method, payment_status, status, status_history, address, customer_notes,
        payment, estimated_ready_at, created_at, updated_at`

// orderRow carries the JSONB columns of an order in their encoded form.
type orderRow struct {
	items   []byte
	history []byte
	payment []byte
	gateway sql.NullString
}

func encodeOrder(o *order.Order) (*orderRow, error) {
	var r orderRow
	var err error
	if r.items, err = json.Marshal(o.Lines); err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	if r.history, err = json.Marshal(o.History); err != nil {
		return nil, fmt.Errorf("encode status history: %w", err)
	}
	if o.Payment != nil {
		if r.payment, err = json.Marshal(o.Payment); err != nil {
			return nil, fmt.Errorf("encode payment: %w", err)
		}
		r.gateway = sql.NullString{String: o.Payment.GatewayOrderID, Valid: o.Payment.GatewayOrderID != ""}
	}
	return &r, nil
}

func (r *orderRow) jsonPayment() any {
	if r.payment == nil {
		return nil
	}
	return string(r.payment)
}

func scanOrder(row scanner) (*order.Order, error) {
	var o order.Order
	var items, history, payment []byte
	err := row.Scan(&o.ID, &o.UserID, &o.Number, &items, &o.Subtotal, &o.Tax, &o.DeliveryFee,
		&o.Discount, &o.Total, &o.PromoCode, &o.Type, &o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&history, &o.Address, &o.Notes, &payment, &o.EstimatedReadyAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Lines); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(history, &o.History); err != nil {
		return nil, fmt.Errorf("decode status history of order %s: %w", o.ID, err)
	}
	if len(payment) > 0 {
		o.Payment = &order.PaymentDetails{}
		if err := json.Unmarshal(payment, o.Payment); err != nil {
			return nil, fmt.Errorf("decode payment of order %s: %w", o.ID, err)
		}
	}
	return &o, nil
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, o *order.Order) error {
	r, err := encodeOrder(o)
	if err != nil {
		return err
	}
	q := `
        INSERT INTO orders (` + orderColumns + `, gateway_order_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`
	_, err = s.db.ExecContext(ctx, q,
		o.ID, o.UserID, o.Number, string(r.items), o.Subtotal, o.Tax, o.DeliveryFee, o.Discount, o.Total,
		o.PromoCode, o.Type, o.PaymentMethod, o.PaymentStatus, o.Status, string(r.history), o.Address,
		o.Notes, r.jsonPayment(), o.EstimatedReadyAt, o.CreatedAt, o.UpdatedAt, r.gateway,
	)
	return err
}

func (s *PostgresStorage) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	return s.findOrder(ctx, `id = $1`, id)
}

func (s *PostgresStorage) FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	return s.findOrder(ctx, `gateway_order_id = $1`, gatewayOrderID)
}

func (s *PostgresStorage) findOrder(ctx context.Context, cond string, arg any) (*order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond + ` ORDER BY created_at DESC LIMIT 1`
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return o, err
}

// UpdateOrder writes every mutable column of o in one statement. Concurrent
// writers overwrite each other.
func (s *PostgresStorage) UpdateOrder(ctx context.Context, o *order.Order) error {
	if !validID(o.ID) {
		return apperr.ErrNotFound
	}
	r, err := encodeOrder(o)
	if err != nil {
		return err
	}
	q := `
        UPDATE orders
        SET payment_status=$1, status=$2, status_history=$3, payment=$4, gateway_order_id=$5,
            estimated_ready_at=$6, updated_at=$7
        WHERE id=$8`
	res, err := s.db.ExecContext(ctx, q,
		o.PaymentStatus, o.Status, string(r.history), r.jsonPayment(), r.gateway,
		o.EstimatedReadyAt, o.UpdatedAt, o.ID,
	)
	return affectedOne(res, err)
}

// ListOrders returns one page of matching orders and the number of matches.
func (s *PostgresStorage) ListOrders(ctx context.Context, f order.Filter) ([]order.Order, int, error) {
	where, args := orderWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func orderWhere(f order.Filter) (string, []any) {
	conds := []string{"TRUE"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}
	if f.UserID != 0 {
		add("user_id =", f.UserID)
	}
	if f.Number != "" {
		add("number =", f.Number)
	}
	if f.Status != "" {
		add("status =", f.Status)
	}
	if !f.From.IsZero() {
		add("created_at >=", f.From)
	}
	if !f.To.IsZero() {
		add("created_at <", f.To)
	}
	return strings.Join(conds, " AND "), args
}
