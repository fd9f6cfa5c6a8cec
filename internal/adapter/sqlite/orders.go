package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// lookupLimit caps the public lookup result set.
const lookupLimit = 50

const orderColumns = `id, first_name, last_name, email, phone, company_name, website,
	package_type, number_of_domains, accounts_per_domain, total_accounts,
	amount_total, currency, price_per_domain, domains, accounts,
	dns_provider, dns_username, dns_password,
	status, progress_percentage, progress_status,
	payment_status, customer_id, subscription_id, subscription_status, current_period_end,
	created_at, updated_at`

// OrderRepository implements domain.OrderRepository using SQLite.
type OrderRepository struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready repository.
func New(dataSourceName string) (*OrderRepository, error) {
	db, err := Open(dataSourceName)
	if err != nil {
		return nil, err
	}
	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready repository.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*OrderRepository, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &OrderRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *OrderRepository) Close() error {
	return r.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (r *OrderRepository) DB() *sql.DB {
	return r.db
}

// Create inserts o. The primary key on id makes a second insert for the same
// checkout session fail with domain.ErrOrderExists.
func (r *OrderRepository) Create(ctx context.Context, o domain.Order) error {
	domains, err := json.Marshal(nonNil(o.Domains))
	if err != nil {
		return fmt.Errorf("encoding domains: %w", err)
	}
	var accounts sql.NullString
	if len(o.Accounts) > 0 {
		b, err := json.Marshal(o.Accounts)
		if err != nil {
			return fmt.Errorf("encoding accounts: %w", err)
		}
		accounts = sql.NullString{String: string(b), Valid: true}
	}
	var periodEnd sql.NullString
	if o.Billing.CurrentPeriodEnd != nil {
		periodEnd = sql.NullString{String: o.Billing.CurrentPeriodEnd.UTC().Format(timeFormat), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Customer.FirstName, o.Customer.LastName, o.Customer.Email, o.Customer.Phone,
		o.Customer.CompanyName, o.Customer.Website,
		string(o.PackageType), o.NumberOfDomains, o.AccountsPerDomain, o.TotalAccounts,
		o.AmountTotal, o.Currency, o.PricePerDomain, string(domains), accounts,
		o.DNS.Provider, o.DNS.Username, o.DNS.Password,
		string(o.Status), o.ProgressPercentage, o.ProgressStatus,
		o.Billing.PaymentStatus, o.Billing.CustomerID, o.Billing.SubscriptionID,
		o.Billing.SubscriptionStatus, periodEnd,
		o.CreatedAt.UTC().Format(timeFormat),
		o.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *OrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking order: %w", err)
	}
	return exists, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, err
}

// Lookup matches an exact id, an exact email (case-insensitive), or an
// email plus a partial id.
func (r *OrderRepository) Lookup(ctx context.Context, q domain.LookupQuery) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE `
	var args []any

	switch {
	case q.Email != "" && q.OrderRef != "":
		query += `email = ? COLLATE NOCASE AND id LIKE ? ESCAPE '\'`
		args = append(args, q.Email, likePattern(q.OrderRef))
	case q.Email != "":
		query += `email = ? COLLATE NOCASE`
		args = append(args, q.Email)
	case q.OrderRef != "":
		query += `id = ?`
		args = append(args, q.OrderRef)
	default:
		return nil, domain.ErrInvalidLookup
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, lookupLimit)

	return r.queryOrders(ctx, query, args...)
}

// List returns one page of orders matching filter and the total match count.
func (r *OrderRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Order, int, error) {
	where := ` WHERE 1 = 1`
	var args []any

	if filter.Status != nil {
		where += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		where += ` AND (id LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'
			OR (first_name || ' ' || last_name) LIKE ? ESCAPE '\'
			OR company_name LIKE ? ESCAPE '\')`
		args = append(args, p, p, p, p)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateProgress writes status, percentage and label in one statement.
func (r *OrderRepository) UpdateProgress(ctx context.Context, id string, u domain.ProgressUpdate, at time.Time) (domain.Order, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, progress_percentage = ?, progress_status = ?, updated_at = ?
		 WHERE id = ?`,
		string(u.Status), u.ProgressPercentage, u.ProgressStatus,
		at.UTC().Format(timeFormat), id,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("updating order progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// scanOrder scans one row selected with orderColumns. sql.ErrNoRows is
// returned unwrapped.
func scanOrder(row scanner) (domain.Order, error) {
	var (
		o                            domain.Order
		packageType, status, domains string
		accounts, periodEnd          sql.NullString
		createdAt, updatedAt         string
	)

	err := row.Scan(
		&o.ID, &o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Email, &o.Customer.Phone,
		&o.Customer.CompanyName, &o.Customer.Website,
		&packageType, &o.NumberOfDomains, &o.AccountsPerDomain, &o.TotalAccounts,
		&o.AmountTotal, &o.Currency, &o.PricePerDomain, &domains, &accounts,
		&o.DNS.Provider, &o.DNS.Username, &o.DNS.Password,
		&status, &o.ProgressPercentage, &o.ProgressStatus,
		&o.Billing.PaymentStatus, &o.Billing.CustomerID, &o.Billing.SubscriptionID,
		&o.Billing.SubscriptionStatus, &periodEnd,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scanning order: %w", err)
	}

	o.PackageType = domain.PackageType(packageType)
	o.Status = domain.OrderStatus(status)
	if err := json.Unmarshal([]byte(domains), &o.Domains); err != nil {
		return domain.Order{}, fmt.Errorf("decoding domains of order %s: %w", o.ID, err)
	}
	if accounts.Valid {
		if err := json.Unmarshal([]byte(accounts.String), &o.Accounts); err != nil {
			return domain.Order{}, fmt.Errorf("decoding accounts of order %s: %w", o.ID, err)
		}
	}
	if periodEnd.Valid {
		if t, err := time.Parse(timeFormat, periodEnd.String); err == nil {
			o.Billing.CurrentPeriodEnd = &t
		}
	}
	o.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	o.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return o, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
