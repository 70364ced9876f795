package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Postgres implements Store on a pgx connection pool. Order lines are
// persisted as a JSONB document, matching their embedded (non-entity)
// shape in the data model.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Connect opens and pings a pgx pool.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// --- Tables ---

const tableCols = "id, table_number, seats, status"

func (p *Postgres) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+tableCols+" FROM tables ORDER BY table_number")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.TableNumber, &t.Seats, &t.Status); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	var t Table
	err := p.pool.QueryRow(ctx, "SELECT "+tableCols+" FROM tables WHERE id = $1", id).
		Scan(&t.ID, &t.TableNumber, &t.Seats, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Table{}, ErrNotFound
	}
	if err != nil {
		return Table{}, fmt.Errorf("get table: %w", err)
	}
	return t, nil
}

func (p *Postgres) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	var t Table
	err := p.pool.QueryRow(ctx,
		"INSERT INTO tables (table_number, seats, status) VALUES ($1, $2, $3) RETURNING "+tableCols,
		arg.TableNumber, arg.Seats, enum.TableStatusEmpty).
		Scan(&t.ID, &t.TableNumber, &t.Seats, &t.Status)
	if err != nil {
		return Table{}, fmt.Errorf("create table: %w", err)
	}
	return t, nil
}

func (p *Postgres) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	var t Table
	err := p.pool.QueryRow(ctx,
		`UPDATE tables SET table_number = $2, seats = $3, status = $4, updated_at = now()
		 WHERE id = $1 RETURNING `+tableCols,
		arg.ID, arg.TableNumber, arg.Seats, arg.Status).
		Scan(&t.ID, &t.TableNumber, &t.Seats, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Table{}, ErrNotFound
	}
	if err != nil {
		return Table{}, fmt.Errorf("update table: %w", err)
	}
	return t, nil
}

func (p *Postgres) UpdateTableStatus(ctx context.Context, id uuid.UUID, status string) (Table, error) {
	var t Table
	err := p.pool.QueryRow(ctx,
		"UPDATE tables SET status = $2, updated_at = now() WHERE id = $1 RETURNING "+tableCols,
		id, status).
		Scan(&t.ID, &t.TableNumber, &t.Seats, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Table{}, ErrNotFound
	}
	if err != nil {
		return Table{}, fmt.Errorf("update table status: %w", err)
	}
	return t, nil
}

func (p *Postgres) DeleteTable(ctx context.Context, id uuid.UUID) error {
	// No cascade: orders keep their table_id after the table is gone.
	tag, err := p.pool.Exec(ctx, "DELETE FROM tables WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Menu ---

const menuCols = "id, name, description, price, category, image_url, is_recommended, is_available"

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var (
		it    MenuItem
		desc  pgtype.Text
		price pgtype.Numeric
		img   pgtype.Text
	)
	err := row.Scan(&it.ID, &it.Name, &desc, &price, &it.Category, &img, &it.IsRecommended, &it.IsAvailable)
	if err != nil {
		return MenuItem{}, err
	}
	it.Description = desc.String
	it.ImageURL = img.String
	it.Price = numericToDecimal(price)
	return it, nil
}

func (p *Postgres) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+menuCols+" FROM menu_items ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (p *Postgres) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	it, err := scanMenuItem(p.pool.QueryRow(ctx, "SELECT "+menuCols+" FROM menu_items WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return MenuItem{}, ErrNotFound
	}
	if err != nil {
		return MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	return it, nil
}

func (p *Postgres) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	it, err := scanMenuItem(p.pool.QueryRow(ctx,
		`INSERT INTO menu_items (name, description, price, category, image_url, is_recommended, is_available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+menuCols,
		arg.Name, textOrNull(arg.Description), decimalToNumeric(arg.Price), arg.Category,
		textOrNull(arg.ImageURL), arg.IsRecommended, arg.IsAvailable))
	if err != nil {
		return MenuItem{}, fmt.Errorf("create menu item: %w", err)
	}
	return it, nil
}

func (p *Postgres) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	it, err := scanMenuItem(p.pool.QueryRow(ctx,
		`UPDATE menu_items
		 SET name = $2, description = $3, price = $4, category = $5, image_url = $6,
		     is_recommended = $7, is_available = $8, updated_at = now()
		 WHERE id = $1 RETURNING `+menuCols,
		arg.ID, arg.Name, textOrNull(arg.Description), decimalToNumeric(arg.Price), arg.Category,
		textOrNull(arg.ImageURL), arg.IsRecommended, arg.IsAvailable))
	if errors.Is(err, pgx.ErrNoRows) {
		return MenuItem{}, ErrNotFound
	}
	if err != nil {
		return MenuItem{}, fmt.Errorf("update menu item: %w", err)
	}
	return it, nil
}

func (p *Postgres) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Orders ---

const orderCols = "id, table_id, table_number, lines, total, status, payment_method, paid_date, created_at"

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		lines  []byte
		total  pgtype.Numeric
		method pgtype.Text
		paid   pgtype.Timestamptz
	)
	err := row.Scan(&o.ID, &o.TableID, &o.TableNumber, &lines, &total, &o.Status, &method, &paid, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return Order{}, fmt.Errorf("decode lines: %w", err)
	}
	o.Total = numericToDecimal(total)
	o.PaymentMethod = method.String
	if paid.Valid {
		t := paid.Time
		o.PaidDate = &t
	}
	return o, nil
}

func (p *Postgres) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	lines, err := json.Marshal(arg.Lines)
	if err != nil {
		return Order{}, fmt.Errorf("encode lines: %w", err)
	}
	o, err := scanOrder(p.pool.QueryRow(ctx,
		`INSERT INTO orders (table_id, table_number, lines, total, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+orderCols,
		arg.TableID, arg.TableNumber, lines, decimalToNumeric(arg.Total), enum.OrderStatusPending))
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

func (p *Postgres) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	o, err := scanOrder(p.pool.QueryRow(ctx, "SELECT "+orderCols+" FROM orders WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (p *Postgres) ListOutstandingOrders(ctx context.Context, tableID uuid.UUID) ([]Order, error) {
	return p.listOrders(ctx,
		"SELECT "+orderCols+" FROM orders WHERE table_id = $1 AND status <> $2 ORDER BY created_at, id",
		tableID, enum.OrderStatusPaid)
}

func (p *Postgres) ListPaidOrders(ctx context.Context, from, to time.Time) ([]Order, error) {
	return p.listOrders(ctx,
		"SELECT "+orderCols+" FROM orders WHERE status = $1 AND paid_date >= $2 AND paid_date < $3 ORDER BY paid_date, id",
		enum.OrderStatusPaid, from, to)
}

func (p *Postgres) listOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkOrderPaid transitions a PENDING order to PAID. A second call for
// the same order matches zero rows and falls through to a plain read,
// returning the already PAID row untouched.
func (p *Postgres) MarkOrderPaid(ctx context.Context, id uuid.UUID, paymentMethod string, paidAt time.Time) (Order, error) {
	o, err := scanOrder(p.pool.QueryRow(ctx,
		`UPDATE orders SET status = $2, payment_method = $3, paid_date = $4
		 WHERE id = $1 AND status <> $2 RETURNING `+orderCols,
		id, enum.OrderStatusPaid, paymentMethod, paidAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return p.GetOrder(ctx, id)
	}
	if err != nil {
		return Order{}, fmt.Errorf("mark order paid: %w", err)
	}
	return o, nil
}

// --- Helpers ---

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
