// dbtool initializes the database schema and seeds hubs outside of the
// server process, for deploys where the service account has no DDL rights.
//
// Usage:
//
//	dbtool -init
//	dbtool -seed hubs.json
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"geo-dispatch-service/internal/adapters/repositories"
	"geo-dispatch-service/internal/platform/db"
)

func main() {
	doInit := flag.Bool("init", false, "create tables when missing")
	seedPath := flag.String("seed", "", "seed hubs from a JSON file")
	sqlitePath := flag.String("sqlite", "", "path to a SQLite database, overrides DATABASE_URL")
	flag.Parse()

	if !*doInit && *seedPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	ctx := context.Background()

	var (
		conn     *sql.DB
		err      error
		postgres bool
	)
	switch {
	case *sqlitePath != "":
		conn, err = db.OpenSQLite(*sqlitePath)
	case os.Getenv("DATABASE_URL") != "":
		conn, err = db.OpenPostgres(os.Getenv("DATABASE_URL"))
		postgres = true
	default:
		log.Fatal("set DATABASE_URL or pass -sqlite")
	}
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer conn.Close()

	if *doInit {
		if postgres {
			err = repositories.InitPostgresSchema(ctx, conn)
		} else {
			err = repositories.InitSQLiteSchema(ctx, conn)
		}
		if err != nil {
			log.Fatalf("init schema: %v", err)
		}
		log.Print("schema initialized")
	}

	if *seedPath != "" {
		if postgres {
			err = repositories.SeedHubsPostgres(ctx, conn, *seedPath)
		} else {
			err = repositories.SeedHubsFromJSON(ctx, conn, *seedPath)
		}
		if err != nil {
			log.Fatalf("seed hubs: %v", err)
		}
	}
}
