package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ranchbox/backend/internal/model"
)

var ErrOrderNotFound = errors.New("order not found")

// UpsertOrder stores an incoming order event. Repeat deliveries of the
// same order id keep the first recorded row.
func (r *Repository) UpsertOrder(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (order_id, buyer_user_id, total)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, order.OrderID, order.BuyerUserID, order.Total)
	return err
}

func (r *Repository) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_id = $1", orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *Repository) MarkOrderProcessed(ctx context.Context, orderID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE orders SET processed_at = NOW() WHERE order_id = $1", orderID)
	return err
}
