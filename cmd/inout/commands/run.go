package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/inout/backend/internal/api"
	"github.com/wonny/inout/backend/internal/api/handlers"
	"github.com/wonny/inout/backend/internal/scheduler"
	"github.com/wonny/inout/backend/internal/scheduler/jobs"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "엔진 데몬 시작 (스케줄러 + 상태 API)",
	Long: `스케줄러와 상태 API 서버를 함께 시작합니다.

등록되는 작업:
- market_open: 평일 장 시작 후 (daily out-check, 금요일에는 weekly in-check 이어서 실행)

Endpoints:
  GET  /health          - Health check
  GET  /metrics         - Prometheus metrics
  GET  /api/state       - 현재 레짐 상태
  GET  /api/decisions   - 최근 평가 기록
  GET  /api/jobs        - 작업 실행 통계
  GET  /ws/decisions    - 평가 결과 WebSocket 스트림

Ctrl+C로 종료할 수 있습니다.`,
	RunE: runDaemon,
}

var (
	runPort       string
	runRetries    int
	runRetryDelay time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runPort, "port", "", "API 서버 포트 (default is PORT)")
	runCmd.Flags().IntVar(&runRetries, "retries", 3, "upstream 실패 시 재시도 횟수")
	runCmd.Flags().DurationVar(&runRetryDelay, "retry-delay", time.Minute, "재시도 간격")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	fmt.Println("=== In/Out Engine ===")

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if runPort != "" {
		a.cfg.Port = runPort
	}

	// 1. Scheduler
	loc, err := a.strategy.Location()
	if err != nil {
		return err
	}
	sched := scheduler.New(a.log,
		scheduler.WithRetry(runRetries, runRetryDelay, jobs.IsRetryable),
		scheduler.WithLocation(loc),
	)

	job, err := jobs.NewMarketOpenJob(a.engine, a.strategy, a.log)
	if err != nil {
		return fmt.Errorf("create market_open job: %w", err)
	}
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	// 2. Status API
	status := handlers.NewStatusHandler(a.engine, a.recorder, sched, a.log)
	status.AddHealthCheck("redis", a.redis.HealthCheck)
	if a.db != nil {
		status.AddHealthCheck("database", func(ctx context.Context) error {
			_, err := a.db.HealthCheck(ctx)
			return err
		})
	}
	server := api.New(a.cfg.Port, a.log, api.NewRouter(status, a.stream, a.registry, a.log))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sched.Start()

	st := a.engine.State()
	fmt.Println("\n✅ Engine started successfully")
	PrintKeyValue("Regime", string(st.Regime), 10)
	PrintKeyValue("Day", fmt.Sprintf("%d", st.DayCounter), 10)
	PrintKeyValue("Wait days", fmt.Sprintf("%d", st.WaitDays), 10)
	PrintKeyValue("Schedule", job.Schedule(), 10)
	PrintKeyValue("API", ":"+a.cfg.Port, 10)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			a.log.WithError(err).Error("API server stopped")
		}
	}

	fmt.Println("\nShutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	fmt.Println("Engine stopped")
	return nil
}
