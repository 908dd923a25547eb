package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const CustomersSchema = `
	CREATE TABLE IF NOT EXISTS customers (
		customer_id BIGINT PRIMARY KEY,
		customer_name VARCHAR NOT NULL,
		gender VARCHAR,
		age INTEGER,
		city VARCHAR,
		country VARCHAR,
		signup_date TIMESTAMP
	);
`
const ProductsSchema = `
	CREATE TABLE IF NOT EXISTS products (
		product_id BIGINT PRIMARY KEY,
		product_name VARCHAR NOT NULL,
		category VARCHAR,
		sub_category VARCHAR,
		brand VARCHAR,
		price DOUBLE,
		cost DOUBLE
	);
`
const OrdersSchema = `
	CREATE TABLE IF NOT EXISTS orders (
		order_id BIGINT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		order_date TIMESTAMP,
		order_status VARCHAR,
		payment_mode VARCHAR
	);
`
const OrderItemsSchema = `
	CREATE TABLE IF NOT EXISTS order_items (
		order_item_id BIGINT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity BIGINT,
		discount DOUBLE,
		final_price DOUBLE
	);
`
const SessionsSchema = `
	CREATE TABLE IF NOT EXISTS website_activity (
		session_id BIGINT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		device_type VARCHAR,
		traffic_source VARCHAR,
		session_start TIMESTAMP,
		pages_viewed INTEGER,
		time_spent INTEGER,
		purchase_made VARCHAR
	);
`

var bootQueries = []string{
	CustomersSchema,
	ProductsSchema,
	OrdersSchema,
	OrderItemsSchema,
	SessionsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
