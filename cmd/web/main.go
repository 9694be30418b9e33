package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/sharanvarma0/student-submissions/internal/app"
	"github.com/sharanvarma0/student-submissions/internal/db"
	"github.com/sharanvarma0/student-submissions/internal/seed"
	"github.com/sharanvarma0/student-submissions/internal/store"
)

func main() {
	cfg := app.LoadConfig()

	ctx := context.Background()
	dbConn, err := db.OpenPostgresWithConfig(ctx, cfg.DBDSN, db.PostgresConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
	})
	if err != nil {
		log.Printf("database error: %v", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	st := store.NewPostgres(dbConn)
	if err := st.EnsureSchema(ctx); err != nil {
		log.Printf("schema error: %v", err)
		os.Exit(1)
	}

	if cfg.SeedSampleData {
		if err := seed.Run(ctx, st); err != nil {
			log.Printf("warning: could not seed sample data: %v", err)
		} else {
			log.Printf("sample data loaded")
		}
	}

	r := app.NewRouter(cfg, dbConn, st)

	log.Printf("student-submissions web listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
