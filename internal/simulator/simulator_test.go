package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/montyhall/internal/montyhall"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(nil, log.Options{Level: log.WarnLevel})
}

func TestNew(t *testing.T) {
	config := Config{
		Trials:  100,
		Seed:    12345,
		Workers: 2,
		Logger:  testLogger(),
	}

	sim := New(config)
	if sim == nil {
		t.Fatal("New() returned nil")
	}
	if sim.config.Trials != 100 {
		t.Errorf("Expected 100 trials, got %d", sim.config.Trials)
	}
	if sim.config.Seed != 12345 {
		t.Errorf("Expected seed 12345, got %d", sim.config.Seed)
	}
}

func TestRun_ZeroTrials(t *testing.T) {
	sim := New(Config{Trials: 0, Seed: 1, Logger: testLogger()})

	_, err := sim.Run(context.Background(), montyhall.Switch)
	if !errors.Is(err, ErrNoTrials) {
		t.Errorf("Expected ErrNoTrials, got %v", err)
	}

	_, err = sim.RunAll(context.Background())
	if !errors.Is(err, ErrNoTrials) {
		t.Errorf("Expected ErrNoTrials from RunAll, got %v", err)
	}
}

func TestRun_InvalidStrategy(t *testing.T) {
	sim := New(Config{Trials: 10, Seed: 1, Logger: testLogger()})
	if _, err := sim.Run(context.Background(), montyhall.Strategy(9)); err == nil {
		t.Error("Expected error for invalid strategy")
	}
}

func TestRun_NegativeWorkers(t *testing.T) {
	sim := New(Config{Trials: 10, Seed: 1, Workers: -1, Logger: testLogger()})
	if _, err := sim.Run(context.Background(), montyhall.Switch); err == nil {
		t.Error("Expected error for negative worker count")
	}
}

func TestRun_Deterministic(t *testing.T) {
	run := func() uint64 {
		sim := New(Config{Trials: 10000, Seed: 999, Workers: 1, Logger: testLogger()})
		result, err := sim.Run(context.Background(), montyhall.Switch)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return result.Wins
	}

	first := run()
	second := run()
	if first != second {
		t.Errorf("Identically seeded runs disagree: %d vs %d wins", first, second)
	}
}

func TestRunParallel_Deterministic(t *testing.T) {
	run := func() uint64 {
		sim := New(Config{Trials: 200000, Seed: 42, Workers: 4, Logger: testLogger()})
		result, err := sim.Run(context.Background(), montyhall.Switch)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Trials != 200000 {
			t.Fatalf("Expected 200000 trials, got %d", result.Trials)
		}
		return result.Wins
	}

	first := run()
	second := run()
	if first != second {
		t.Errorf("Identically seeded parallel runs disagree: %d vs %d wins", first, second)
	}
}

// Trial counts that don't divide evenly across workers must not lose the
// remainder.
func TestRunParallel_RemainderTrials(t *testing.T) {
	sim := New(Config{Trials: 100003, Seed: 5, Workers: 4, Logger: testLogger()})
	result, err := sim.Run(context.Background(), montyhall.Stay)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Trials != 100003 {
		t.Errorf("Expected 100003 trials, got %d", result.Trials)
	}
}

func TestRun_Convergence(t *testing.T) {
	sim := New(Config{Trials: 100000, Seed: 20240817, Logger: testLogger()})

	switched, err := sim.Run(context.Background(), montyhall.Switch)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rate := switched.WinRate(); rate < 0.660 || rate > 0.673 {
		t.Errorf("Switch win rate %f outside [0.660, 0.673]", rate)
	}

	stayed, err := sim.Run(context.Background(), montyhall.Stay)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rate := stayed.WinRate(); rate < 0.327 || rate > 0.340 {
		t.Errorf("Stay win rate %f outside [0.327, 0.340]", rate)
	}
}

func TestRunAll(t *testing.T) {
	sim := New(Config{Trials: 50000, Seed: 77, Workers: 1, Logger: testLogger()})

	results, err := sim.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if results.Switched.Trials != 50000 || results.Stayed.Trials != 50000 {
		t.Errorf("Expected 50000 trials per strategy, got %d/%d",
			results.Switched.Trials, results.Stayed.Trials)
	}
	if results.Switched.WinRate() <= results.Stayed.WinRate() {
		t.Errorf("Expected switching to beat staying, got %f vs %f",
			results.Switched.WinRate(), results.Stayed.WinRate())
	}

	// Both strategies replay the same seeded trial stream, so their wins
	// partition it exactly.
	if results.Switched.Wins+results.Stayed.Wins != results.Switched.Trials {
		t.Errorf("Expected complementary wins, got %d + %d over %d trials",
			results.Switched.Wins, results.Stayed.Wins, results.Switched.Trials)
	}
}

type recordingReporter struct {
	completed uint64
	total     uint64
	calls     int
}

func (r *recordingReporter) OnProgress(completed, total uint64) {
	r.completed = completed
	r.total = total
	r.calls++
}

func TestRun_FinalProgressReport(t *testing.T) {
	reporter := &recordingReporter{}
	sim := New(Config{Trials: 10000, Seed: 3, Workers: 1, Logger: testLogger(), Reporter: reporter})

	if _, err := sim.Run(context.Background(), montyhall.Switch); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if reporter.calls == 0 {
		t.Fatal("Expected at least one progress report")
	}
	if reporter.completed != 10000 || reporter.total != 10000 {
		t.Errorf("Expected final report 10000/10000, got %d/%d", reporter.completed, reporter.total)
	}
}

// The progress ticker runs on the injected clock, so tests control when
// intermediate reports fire.
func TestRun_ProgressUsesInjectedClock(t *testing.T) {
	mock := quartz.NewMock(t)
	trap := mock.Trap().NewTicker()
	defer trap.Close()

	reporter := &recordingReporter{}
	sim := New(Config{
		Trials:   1 << 20,
		Seed:     1,
		Workers:  1,
		Logger:   testLogger(),
		Clock:    mock,
		Reporter: reporter,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := sim.Run(context.Background(), montyhall.Switch); err != nil {
			t.Errorf("Run failed: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	<-done

	if reporter.calls == 0 {
		t.Fatal("Expected at least the final progress report")
	}
	if reporter.completed != 1<<20 {
		t.Errorf("Expected final report for all trials, got %d", reporter.completed)
	}
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(Config{Trials: 1 << 30, Seed: 1, Workers: 1, ChunkSize: 1024, Logger: testLogger()})
	_, err := sim.Run(ctx, montyhall.Switch)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunSimulation_Convenience(t *testing.T) {
	results, err := RunSimulation(context.Background(), 10000, 12345, 1, testLogger())
	if err != nil {
		t.Fatalf("RunSimulation failed: %v", err)
	}
	if results.TotalTrials() != 20000 {
		t.Errorf("Expected 20000 total trials, got %d", results.TotalTrials())
	}
}

func BenchmarkRun_Sequential(b *testing.B) {
	sim := New(Config{Trials: 100000, Seed: 1, Workers: 1, Logger: testLogger()})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sim.Run(context.Background(), montyhall.Switch); err != nil {
			b.Fatalf("Run failed: %v", err)
		}
	}
}

func BenchmarkRun_Parallel(b *testing.B) {
	sim := New(Config{Trials: 1000000, Seed: 1, Logger: testLogger()})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sim.Run(context.Background(), montyhall.Switch); err != nil {
			b.Fatalf("Run failed: %v", err)
		}
	}
}
