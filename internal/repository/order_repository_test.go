package repository_test

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

type orderRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.OrderRepository
	container testcontainers.Container
}

func TestOrderRepositorySuite(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(orderRepositorySuite))
}

func (suite *orderRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo = repository.NewOrder(suite.pool)
}

func (suite *orderRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *orderRepositorySuite) SetupTest() {
	_, err := suite.pool.Exec(suite.T().Context(),
		"TRUNCATE TABLE order_items, orders, products CASCADE")
	suite.NoError(err)
}

// fakeOrder builds an order whose items reference freshly inserted products,
// since order_items carries a foreign key to the products table.
func (suite *orderRepositorySuite) fakeOrder(ownerID string, itemCount int) domain.Order {
	t := suite.T()
	ctx := t.Context()

	var items []domain.OrderItem
	for i := 0; i < itemCount; i++ {
		product, err := insertFakeProduct(ctx, suite.pool, fakeProduct())
		suite.Require().NoError(err)

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Quantity:  gofakeit.Number(1, 3),
			Price:     product.Price,
		})
	}

	subtotal := lo.Reduce(items, func(acc decimal.Decimal, item domain.OrderItem, _ int) decimal.Decimal {
		return acc.Add(item.Price.Amount.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}, decimal.Zero)

	return domain.Order{
		OrderNumber:     fmt.Sprintf("ORD-TEST-%s", uuid.NewString()[:13]),
		OwnerID:         ownerID,
		Subtotal:        subtotal,
		Tax:             decimal.NewFromInt(2),
		Shipping:        decimal.NewFromInt(5),
		Total:           subtotal.Add(decimal.NewFromInt(7)),
		Currency:        currency.USD,
		ShippingAddress: []byte(`{"city": "Helsinki", "street": "Mannerheimintie 1"}`),
		PaymentMethod:   domain.DefaultPaymentMethod,
		Items:           items,
	}
}

func (suite *orderRepositorySuite) TestInsertAndGetOrder() {
	t := suite.T()
	ctx := t.Context()

	order := suite.fakeOrder(gofakeit.UUID(), 2)

	orderID, err := suite.repo.InsertOrder(ctx, order)
	require.NoError(t, err)

	actual, err := suite.repo.GetOrder(ctx, orderID)
	require.NoError(t, err)

	assert.Equal(t, order.OrderNumber, actual.OrderNumber)
	assert.Equal(t, order.OwnerID, actual.OwnerID)
	assert.Equal(t, domain.OrderStatusPending, actual.Status)
	assert.True(t, order.Total.Equal(actual.Total))
	assert.JSONEq(t, string(order.ShippingAddress), string(actual.ShippingAddress))
	assert.Nil(t, actual.BillingAddress)

	require.Len(t, actual.Items, 2)

	// Items inserted in one transaction share a created_at, so match by product.
	byProduct := lo.KeyBy(actual.Items, func(i domain.OrderItem) uuid.UUID { return i.ProductID })
	for _, expected := range order.Items {
		item, ok := byProduct[expected.ProductID]
		require.True(t, ok)

		assert.Equal(t, expected.Quantity, item.Quantity)
		assert.True(t, expected.Price.Amount.Equal(item.Price.Amount))

		require.NotNil(t, item.Product)
		assert.Equal(t, item.ProductID, item.Product.ID)
		assert.NotEmpty(t, item.Product.Name)
	}
}

func (suite *orderRepositorySuite) TestGetOrderNotFound() {
	t := suite.T()

	_, err := suite.repo.GetOrder(t.Context(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *orderRepositorySuite) TestInsertOrderNoItems() {
	t := suite.T()

	order := suite.fakeOrder(gofakeit.UUID(), 1)
	order.Items = nil

	_, err := suite.repo.InsertOrder(t.Context(), order)
	require.Error(t, err)
}

func (suite *orderRepositorySuite) TestInsertOrderDuplicateNumber() {
	t := suite.T()
	ctx := t.Context()

	order := suite.fakeOrder(gofakeit.UUID(), 1)

	_, err := suite.repo.InsertOrder(ctx, order)
	require.NoError(t, err)

	duplicate := suite.fakeOrder(gofakeit.UUID(), 1)
	duplicate.OrderNumber = order.OrderNumber

	_, err = suite.repo.InsertOrder(ctx, duplicate)
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err, "orders_order_number_key"))
}

func (suite *orderRepositorySuite) TestListOrders() {
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()
	otherOwnerID := gofakeit.UUID()

	mine := suite.fakeOrder(ownerID, 1)
	theirs := suite.fakeOrder(otherOwnerID, 1)

	mineID, err := suite.repo.InsertOrder(ctx, mine)
	require.NoError(t, err)

	_, err = suite.repo.InsertOrder(ctx, theirs)
	require.NoError(t, err)

	require.NoError(t, suite.repo.UpdateOrderStatus(ctx, mineID, domain.OrderStatusConfirmed))

	var productName string
	err = suite.pool.QueryRow(ctx, "SELECT name FROM products WHERE id = $1", mine.Items[0].ProductID).Scan(&productName)
	require.NoError(t, err)

	tests := []struct {
		name        string
		filter      domain.OrderFilter
		wantNumbers []string
	}{
		{
			name:        "by owner",
			filter:      domain.OrderFilter{OwnerID: ownerID},
			wantNumbers: []string{mine.OrderNumber},
		},
		{
			name:        "by status",
			filter:      domain.OrderFilter{Status: domain.OrderStatusConfirmed},
			wantNumbers: []string{mine.OrderNumber},
		},
		{
			name:        "by order number search",
			filter:      domain.OrderFilter{Search: theirs.OrderNumber},
			wantNumbers: []string{theirs.OrderNumber},
		},
		{
			name:        "by product name search",
			filter:      domain.OrderFilter{Search: productName},
			wantNumbers: []string{mine.OrderNumber},
		},
		{
			name:        "owner with no orders",
			filter:      domain.OrderFilter{OwnerID: gofakeit.UUID()},
			wantNumbers: nil,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			orders, total, err := suite.repo.ListOrders(t.Context(), tt.filter, domain.Page{Number: 1, Limit: 10})
			require.NoError(t, err)

			numbers := lo.Map(orders, func(o domain.Order, _ int) string { return o.OrderNumber })
			assert.ElementsMatch(t, tt.wantNumbers, numbers)
			assert.EqualValues(t, len(tt.wantNumbers), total)

			for _, o := range orders {
				assert.NotEmpty(t, o.Items)
			}
		})
	}
}

func (suite *orderRepositorySuite) TestListOrdersInvalidStatus() {
	t := suite.T()

	_, _, err := suite.repo.ListOrders(t.Context(), domain.OrderFilter{Status: "TELEPORTED"}, domain.Page{})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func (suite *orderRepositorySuite) TestUpdateOrderStatus() {
	tests := []struct {
		name    string
		from    domain.OrderStatus
		to      domain.OrderStatus
		wantErr error
	}{
		{
			name: "pending to confirmed: ok",
			from: domain.OrderStatusPending,
			to:   domain.OrderStatusConfirmed,
		},
		{
			name: "processing to shipped: ok",
			from: domain.OrderStatusProcessing,
			to:   domain.OrderStatusShipped,
		},
		{
			name: "pending to cancelled: ok",
			from: domain.OrderStatusPending,
			to:   domain.OrderStatusCancelled,
		},
		{
			name:    "pending to shipped: skips steps",
			from:    domain.OrderStatusPending,
			to:      domain.OrderStatusShipped,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "shipped to cancelled: too late",
			from:    domain.OrderStatusShipped,
			to:      domain.OrderStatusCancelled,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "delivered is terminal",
			from:    domain.OrderStatusDelivered,
			to:      domain.OrderStatusConfirmed,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown target status",
			from:    domain.OrderStatusPending,
			to:      "TELEPORTED",
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			order := suite.fakeOrder(gofakeit.UUID(), 1)
			order.Status = tt.from

			orderID, err := suite.repo.InsertOrder(ctx, order)
			require.NoError(t, err)

			err = suite.repo.UpdateOrderStatus(ctx, orderID, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				actual, err := suite.repo.GetOrder(ctx, orderID)
				require.NoError(t, err)
				assert.Equal(t, tt.from, actual.Status)
				return
			}
			require.NoError(t, err)

			actual, err := suite.repo.GetOrder(ctx, orderID)
			require.NoError(t, err)
			assert.Equal(t, tt.to, actual.Status)
		})
	}
}

func (suite *orderRepositorySuite) TestUpdateOrderStatusNotFound() {
	t := suite.T()

	err := suite.repo.UpdateOrderStatus(t.Context(), uuid.New(), domain.OrderStatusConfirmed)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
