package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatadesk/khatadesk/internal/platform/db"
)

// ErrOrderNotFound reports a reconciliation request for an unknown order.
var ErrOrderNotFound = errors.New("fulfillment: sales order not found")

// Repository reads sales orders and what has been invoiced against them.
type Repository interface {
	OpenOrders(ctx context.Context) ([]Order, error)
	OrderByNumber(ctx context.Context, number string) (*Order, error)
	InvoicedByOrder(ctx context.Context, orderIDs []int64) (map[int64]OrderInvoiced, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) OpenOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_number, customer_name, order_date, status, total_amount
		FROM sales_orders
		WHERE status = $1
		ORDER BY order_date, id`, OrderOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := r.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *repository) OrderByNumber(ctx context.Context, number string) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, order_number, customer_name, order_date, status, total_amount
		FROM sales_orders
		WHERE order_number = $1`, number)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, number)
	}
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.orderLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total pgtype.Numeric
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.OrderDate, &o.Status, &total)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = db.Decimal(total)
	return &o, nil
}

func (r *repository) orderLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, description, quantity, unit, rate
		FROM sales_order_items
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		var productID pgtype.Int8
		var quantity, rate pgtype.Numeric
		if err := rows.Scan(&l.ID, &productID, &l.Description, &quantity, &l.Unit, &rate); err != nil {
			return nil, err
		}
		if productID.Valid {
			l.ProductID = &productID.Int64
		}
		l.Quantity = db.Decimal(quantity)
		l.Rate = db.Decimal(rate)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// InvoicedByOrder aggregates invoiced quantity per product key, invoiced
// amount and invoice numbers for each order. Only sales invoices carry a
// sales order reference.
func (r *repository) InvoicedByOrder(ctx context.Context, orderIDs []int64) (map[int64]OrderInvoiced, error) {
	out := make(map[int64]OrderInvoiced, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT sales_order_id, number, total
		FROM sales_invoices
		WHERE sales_order_id = ANY($1)
		ORDER BY invoice_date, id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID int64
		var number string
		var total pgtype.Numeric
		if err := rows.Scan(&orderID, &number, &total); err != nil {
			return nil, err
		}
		agg := out[orderID]
		agg.Amount = agg.Amount.Add(db.Decimal(total))
		agg.InvoiceNumbers = append(agg.InvoiceNumbers, number)
		out[orderID] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.pool.Query(ctx, `
		SELECT i.sales_order_id, it.product_id, it.description, SUM(it.quantity)
		FROM sales_invoice_items it
		JOIN sales_invoices i ON i.id = it.invoice_id
		WHERE i.sales_order_id = ANY($1)
		GROUP BY i.sales_order_id, it.product_id, it.description`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var orderID int64
		var productID pgtype.Int8
		var description string
		var quantity pgtype.Numeric
		if err := itemRows.Scan(&orderID, &productID, &description, &quantity); err != nil {
			return nil, err
		}
		line := InvoicedLine{Description: description, Quantity: db.Decimal(quantity)}
		if productID.Valid {
			line.ProductID = &productID.Int64
		}
		agg := out[orderID]
		agg.Lines = append(agg.Lines, line)
		out[orderID] = agg
	}
	return out, itemRows.Err()
}
