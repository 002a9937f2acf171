// The simulate command drives a running api-server with a mixed workload of
// bookings, walk-in check-ins, status updates, and dashboard reads, then
// prints per-operation latency and outcome statistics.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-scheduling/internal/config"
	"github.com/clinicore/clinic-scheduling/internal/db"
)

type simConfig struct {
	BaseURL      string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	CheckInRatio float64
	StatusRatio  float64
	DoctorLimit  int
	PatientLimit int
	PostgresDSN  string
}

func loadSimConfig() simConfig {
	base, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	cfg := simConfig{
		BaseURL:      strEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     durEnv("SIM_DURATION", 30*time.Second),
		Workers:      intEnv("SIM_WORKERS", 10),
		BookingRatio: floatEnv("SIM_BOOKING_RATIO", 0.35),
		CheckInRatio: floatEnv("SIM_CHECKIN_RATIO", 0.25),
		StatusRatio:  floatEnv("SIM_STATUS_RATIO", 0.15),
		DoctorLimit:  intEnv("SIM_DOCTOR_LIMIT", 50),
		PatientLimit: intEnv("SIM_PATIENT_LIMIT", 2000),
		PostgresDSN:  base.PostgresDSN,
	}
	if cfg.Workers <= 0 || cfg.Duration <= 0 {
		log.Fatal("SIM_WORKERS and SIM_DURATION must be positive")
	}
	return cfg
}

// opStats accumulates outcomes and latencies for one operation kind.
type opStats struct {
	mu        sync.Mutex
	success   int
	rejected  int
	failed    int
	latencies []time.Duration
}

func (s *opStats) record(latency time.Duration, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch outcome {
	case "success":
		s.success++
	case "rejected":
		s.rejected++
	default:
		s.failed++
	}
	s.latencies = append(s.latencies, latency)
}

func (s *opStats) report(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.success + s.rejected + s.failed
	if total == 0 {
		return
	}

	sorted := make([]time.Duration, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	pct := func(p int) time.Duration {
		idx := len(sorted) * p / 100
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx].Round(time.Millisecond)
	}

	fmt.Printf("%-22s total=%-6d success=%-6d rejected=%-5d failed=%-4d p50=%-8s p95=%-8s max=%s\n",
		name, total, s.success, s.rejected, s.failed,
		pct(50), pct(95), sorted[len(sorted)-1].Round(time.Millisecond))
}

// pool of known entities the workers draw from and feed back into.
type dataPool struct {
	doctors  []doctorRef
	patients []string

	mu           sync.RWMutex
	appointments []uuid.UUID
	queueEntries []uuid.UUID
}

type doctorRef struct {
	ID   uuid.UUID
	Name string
}

func (dp *dataPool) add(ids *[]uuid.UUID, id uuid.UUID) {
	dp.mu.Lock()
	*ids = append(*ids, id)
	dp.mu.Unlock()
}

func (dp *dataPool) pick(ids *[]uuid.UUID, rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(*ids) == 0 {
		return uuid.Nil, false
	}
	return (*ids)[rng.Intn(len(*ids))], true
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg simConfig) (*dataPool, error) {
	dp := &dataPool{}

	rows, err := pool.Query(ctx, `SELECT id, name FROM doctors LIMIT $1`, cfg.DoctorLimit)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d doctorRef
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		dp.doctors = append(dp.doctors, d)
	}

	rows, err = pool.Query(ctx, `SELECT name FROM patients LIMIT $1`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		dp.patients = append(dp.patients, name)
	}

	if len(dp.doctors) == 0 || len(dp.patients) == 0 {
		return nil, fmt.Errorf("empty data pool, run cmd/seed first")
	}
	return dp, nil
}

type simulator struct {
	cfg    simConfig
	pool   *dataPool
	client *http.Client

	booking     opStats
	checkIn     opStats
	apptStatus  opStats
	queueStatus opStats
	listAppts   opStats
	listQueue   opStats
}

var services = []string{
	"General Consultation",
	"Cardiology Review",
	"Pediatric Checkup",
	"Dermatology Consult",
}

var clockTimes = []string{
	"8:00AM", "8:30 AM", "9:00 AM", "10:15 AM", "11:45 AM",
	"1:00 PM", "2:00PM", "3:30 PM", "4:45 PM",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadSimConfig()
	log.Printf("config: duration=%s workers=%d booking=%.2f checkin=%.2f status=%.2f",
		cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.CheckInRatio, cfg.StatusRatio)

	connCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pgPool, err := db.Connect(connCtx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dp, err := loadDataPool(context.Background(), pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}
	log.Printf("loaded: %d doctors, %d patients", len(dp.doctors), len(dp.patients))

	sim := &simulator{
		cfg:    cfg,
		pool:   dp,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	sim.run()
	sim.printReport()
}

func (s *simulator) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Duration)
	defer cancel()

	log.Printf("running for %s with %d workers", s.cfg.Duration, s.cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			s.worker(ctx, rand.New(rand.NewSource(time.Now().UnixNano()+seed)))
		}(int64(i))
	}
	wg.Wait()
	log.Println("simulation complete")
}

func (s *simulator) worker(ctx context.Context, rng *rand.Rand) {
	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.cfg.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.cfg.BookingRatio+s.cfg.CheckInRatio:
			s.doCheckIn(ctx, rng)
		case r < s.cfg.BookingRatio+s.cfg.CheckInRatio+s.cfg.StatusRatio:
			if rng.Intn(2) == 0 {
				s.doAppointmentStatus(ctx, rng)
			} else {
				s.doQueueStatus(ctx, rng)
			}
		default:
			if rng.Intn(2) == 0 {
				s.doList(ctx, rng, &s.listAppts, "/appointments?doctor_id=%s", true)
			} else {
				s.doList(ctx, rng, &s.listQueue, "/queue?doctor=%s", false)
			}
		}
	}
}

// postJSON sends a request, records latency and outcome, and returns the id
// field of a 2xx response body when present.
func (s *simulator) postJSON(ctx context.Context, stats *opStats, path string, payload any, wantStatus int) (uuid.UUID, bool) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		stats.record(latency, "failed")
		return uuid.Nil, false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == wantStatus:
		stats.record(latency, "success")
		var out struct {
			ID uuid.UUID `json:"id"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return out.ID, true
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Validation rejections and bad transitions are expected under a
		// random workload.
		stats.record(latency, "rejected")
	default:
		stats.record(latency, "failed")
	}
	return uuid.Nil, false
}

func (s *simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	doctor := s.pool.doctors[rng.Intn(len(s.pool.doctors))]
	id, ok := s.postJSON(ctx, &s.booking, "/appointments", map[string]string{
		"doctor_id":     doctor.ID.String(),
		"doctor_name":   doctor.Name,
		"name":          s.pool.patients[rng.Intn(len(s.pool.patients))],
		"selected_date": time.Now().AddDate(0, 0, 1+rng.Intn(14)).Format("2006-01-02"),
		"selected_time": clockTimes[rng.Intn(len(clockTimes))],
		"service_name":  services[rng.Intn(len(services))],
	}, http.StatusCreated)
	if ok && id != uuid.Nil {
		s.pool.add(&s.pool.appointments, id)
	}
}

func (s *simulator) doCheckIn(ctx context.Context, rng *rand.Rand) {
	doctor := s.pool.doctors[rng.Intn(len(s.pool.doctors))]
	id, ok := s.postJSON(ctx, &s.checkIn, "/queue/check-in", map[string]string{
		"patient_name": s.pool.patients[rng.Intn(len(s.pool.patients))],
		"doctor_name":  doctor.Name,
	}, http.StatusCreated)
	if ok && id != uuid.Nil {
		s.pool.add(&s.pool.queueEntries, id)
	}
}

func (s *simulator) doAppointmentStatus(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.pick(&s.pool.appointments, rng)
	if !ok {
		return
	}
	statuses := []string{"confirmed", "rejected", "attended"}
	s.postJSON(ctx, &s.apptStatus, "/appointments/"+id.String()+"/status", map[string]string{
		"new_status": statuses[rng.Intn(len(statuses))],
	}, http.StatusOK)
}

func (s *simulator) doQueueStatus(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.pick(&s.pool.queueEntries, rng)
	if !ok {
		return
	}
	statuses := []string{"waiting", "pending", "met"}
	s.postJSON(ctx, &s.queueStatus, "/queue/"+id.String()+"/status", map[string]string{
		"new_status": statuses[rng.Intn(len(statuses))],
	}, http.StatusOK)
}

func (s *simulator) doList(ctx context.Context, rng *rand.Rand, stats *opStats, pathFmt string, byID bool) {
	doctor := s.pool.doctors[rng.Intn(len(s.pool.doctors))]
	arg := url.QueryEscape(doctor.Name)
	if byID {
		arg = doctor.ID.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+fmt.Sprintf(pathFmt, arg), nil)
	if err != nil {
		return
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		stats.record(latency, "failed")
		return
	}
	resp.Body.Close()

	outcome := "failed"
	if resp.StatusCode == http.StatusOK {
		outcome = "success"
	}
	stats.record(latency, outcome)
}

func (s *simulator) printReport() {
	fmt.Printf("\nworkload report (%s, %d workers)\n\n", s.cfg.Duration, s.cfg.Workers)
	s.booking.report("booking")
	s.checkIn.report("check-in")
	s.apptStatus.report("appointment status")
	s.queueStatus.report("queue status")
	s.listAppts.report("list appointments")
	s.listQueue.report("list queue")
}

func strEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func durEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
