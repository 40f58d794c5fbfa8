package cron

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/job"
	"Touchstone/internal/pkg/logger"
	"Touchstone/internal/pkg/metrics"
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// slot 每个任务一个租约槽位，running 为 true 时新的触发直接跳过
type slot struct {
	task    job.Task
	spec    string
	entryID cron.EntryID

	running    bool
	cancel     context.CancelFunc
	runCount   int64
	skipCount  int64
	lastStart  time.Time
	lastEnd    time.Time
	lastError  string
	lastResult string
}

type Manager struct {
	engine *cron.Cron
	root   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	slots map[string]*slot
	order []string
}

func NewCronManager(tasks ...job.Task) *Manager {
	root, stop := context.WithCancel(context.Background())
	m := &Manager{
		engine: cron.New(cron.WithSeconds()),
		root:   root,
		stop:   stop,
		slots:  make(map[string]*slot, len(tasks)),
	}
	for _, t := range tasks {
		m.slots[t.Name()] = &slot{task: t}
		m.order = append(m.order, t.Name())
	}
	return m
}

// RegisterJobs 注册定时任务，spec 为空的任务只能手动触发
func (s *Manager) RegisterJobs(specs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range s.order {
		spec := specs[name]
		if spec == "" {
			log.Warn("cron job has no schedule", "job", name)
			continue
		}
		id, err := s.engine.AddFunc(spec, func() {
			s.runScheduled(name)
		})
		if err != nil {
			return fmt.Errorf("register job %s: %w", name, err)
		}
		s.slots[name].spec = spec
		s.slots[name].entryID = id
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 停止调度并取消所有运行中的任务，等待其退出或超时
func (s *Manager) Stop(ctx context.Context) {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
	// 与 acquire 串行，停止之后不会再有 wg.Add
	s.mu.Lock()
	s.stop()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("cron jobs did not exit before shutdown deadline")
	}
}

func (s *Manager) runScheduled(name string) {
	ctx, sl, err := s.acquire(name)
	if err != nil {
		return
	}
	s.execute(ctx, name, sl, 0)
}

// Trigger 手动触发，异步执行，与定时触发共用租约
func (s *Manager) Trigger(name string, limit int) error {
	ctx, sl, err := s.acquire(name)
	if err != nil {
		return err
	}
	go s.execute(ctx, name, sl, limit)
	return nil
}

// RunSync 同步执行一次，测试与命令行使用
func (s *Manager) RunSync(name string, limit int) (*dto.BatchResultDTO, error) {
	ctx, sl, err := s.acquire(name)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, name, sl, limit)
}

// Cancel 取消运行中的任务
func (s *Manager) Cancel(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[name]
	if !ok {
		return service.ErrJobNotFound
	}
	if !sl.running || sl.cancel == nil {
		return service.ErrJobNotRunning
	}
	sl.cancel()
	log.Info("cron job cancel requested", "job", name)
	return nil
}

func (s *Manager) acquire(name string) (context.Context, *slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[name]
	if !ok {
		return nil, nil, service.ErrJobNotFound
	}
	if sl.running {
		sl.skipCount++
		log.Warn("cron job still running, skip this trigger", "job", name, "started_at", sl.lastStart)
		metrics.RecordJob(name, metrics.OutcomeSkipped, 0)
		return nil, nil, service.ErrJobRunning
	}
	if err := s.root.Err(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(s.root)
	ctx = logger.NewTraceContext(ctx, "job-"+name)
	sl.running = true
	sl.cancel = cancel
	sl.runCount++
	sl.lastStart = time.Now()
	s.wg.Add(1)
	return ctx, sl, nil
}

func (s *Manager) release(sl *slot, res *dto.BatchResultDTO, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl.cancel()
	sl.running = false
	sl.cancel = nil
	sl.lastEnd = time.Now()
	sl.lastError = ""
	if err != nil {
		sl.lastError = err.Error()
	}
	if res != nil {
		sl.lastResult = fmt.Sprintf("total=%d updated=%d errors=%d", res.Total, res.Updated, res.Errors)
	}
	s.wg.Done()
}

func (s *Manager) execute(ctx context.Context, name string, sl *slot, limit int) (res *dto.BatchResultDTO, err error) {
	start := time.Now()
	metrics.JobRunning.WithLabelValues(name).Set(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v", r)
			log.ErrorContext(ctx, "cron job panic", "job", name, "panic", r)
		}
		outcome := metrics.OutcomeSuccess
		switch {
		case ctx.Err() != nil:
			outcome = metrics.OutcomeCanceled
		case err != nil:
			outcome = metrics.OutcomeFailed
		}
		metrics.JobRunning.WithLabelValues(name).Set(0)
		metrics.RecordJob(name, outcome, time.Since(start))
		s.release(sl, res, err)
	}()

	log.InfoContext(ctx, "cron job start", "job", name, "limit", limit)
	res, err = sl.task.Execute(ctx, limit)
	if err != nil {
		log.ErrorContext(ctx, "cron job failed", "job", name, "err", err, "elapsed", time.Since(start).String())
		return res, err
	}
	if res == nil {
		res = &dto.BatchResultDTO{}
	}
	log.InfoContext(ctx, "cron job done",
		"job", name,
		"total", res.Total,
		"updated", res.Updated,
		"errors", res.Errors,
		"elapsed", time.Since(start).String())
	return res, nil
}

// Status 按注册顺序返回所有任务状态
func (s *Manager) Status() []*dto.JobStatusDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*dto.JobStatusDTO, 0, len(s.order))
	for _, name := range s.order {
		sl := s.slots[name]
		st := &dto.JobStatusDTO{
			Name:       name,
			Spec:       sl.spec,
			Running:    sl.running,
			RunCount:   sl.runCount,
			SkipCount:  sl.skipCount,
			LastError:  sl.lastError,
			LastResult: sl.lastResult,
		}
		if !sl.lastStart.IsZero() {
			st.LastStart = util.FormatTime(sl.lastStart)
		}
		if !sl.lastEnd.IsZero() {
			st.LastEnd = util.FormatTime(sl.lastEnd)
		}
		if sl.entryID != 0 {
			if next := s.engine.Entry(sl.entryID).Next; !next.IsZero() {
				st.NextRun = util.FormatTime(next)
			}
		}
		out = append(out, st)
	}
	return out
}
