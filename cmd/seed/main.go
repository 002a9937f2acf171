// The seed command fills a fresh database with fake doctors and patients so
// the api-server and simulator have data to work against.
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-scheduling/internal/db"
)

// Specialty labels line up with the service-type catalog so seeded doctors
// cover every consultation duration.
var specialties = []string{
	"General Practice",
	"Cardiology",
	"Pediatrics",
	"Dermatology",
	"Orthopedics",
	"Neurology",
	"Psychiatry",
	"Ophthalmology",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}
	doctorCount := intEnv("SEED_DOCTORS", 50)
	patientCount := intEnv("SEED_PATIENTS", 2000)

	connCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.Connect(connCtx, dsn)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())
	ctx := context.Background()

	n, err := seedDoctors(ctx, pool, doctorCount)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	log.Printf("doctors seeded: %d", n)

	n, err = seedPatients(ctx, pool, patientCount)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	log.Printf("patients seeded: %d", n)

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) (int64, error) {
	now := time.Now()
	rows := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, []any{
			uuid.New(),
			"Dr. " + gofakeit.Name(),
			specialties[gofakeit.Number(0, len(specialties)-1)],
			now,
			now,
		})
	}

	return pool.CopyFrom(ctx,
		pgx.Identifier{"doctors"},
		[]string{"id", "name", "specialty", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) (int64, error) {
	now := time.Now()
	rows := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, []any{
			uuid.New(),
			gofakeit.Name(),
			gofakeit.Email(),
			gofakeit.Phone(),
			now,
			now,
		})
	}

	return pool.CopyFrom(ctx,
		pgx.Identifier{"patients"},
		[]string{"id", "name", "email", "phone", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
