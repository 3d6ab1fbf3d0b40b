package gateway_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/koustreak/duckgate/internal/database"
	"github.com/koustreak/duckgate/internal/gateway"
	"github.com/koustreak/duckgate/internal/session"
)

func Example() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "duckgate-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	reg := session.NewRegistry(nil)
	defer reg.CloseAll()
	svc := gateway.New(reg)

	conn, err := svc.Connect(ctx, session.Credentials{
		Database: filepath.Join(dir, "demo.db"),
		DBType:   "sqlite",
	})
	if err != nil {
		panic(err)
	}

	lease, err := reg.Acquire(conn.Token)
	if err != nil {
		panic(err)
	}
	defer lease.Release()

	_, err = svc.CreateTable(ctx, lease.Session, database.CreateTableRequest{
		Name: "books",
		Columns: []database.ColumnDefinition{
			{Name: "id", DataType: "INTEGER", IsPrimaryKey: true},
			{Name: "title", DataType: "TEXT"},
		},
	})
	if err != nil {
		panic(err)
	}

	res, err := svc.InsertRow(ctx, lease.Session, "books", database.Values{"title": "Dune"})
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Message, res.RowsAffected)

	page, err := svc.ReadRows(ctx, lease.Session, "books", gateway.ReadParams{Page: 1, Limit: 10})
	if err != nil {
		panic(err)
	}
	out, _ := json.Marshal(page)
	fmt.Println(string(out))

	// Output:
	// Row inserted successfully 1
	// {"rows":[{"id":1,"title":"Dune"}],"page":1,"limit":10}
}
