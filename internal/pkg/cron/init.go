package cron

import log "log/slog"

// InitCron 注册并启动调度，specs 为空时只能手动触发
func InitCron(mgr *Manager, specs map[string]string) error {
	if err := mgr.RegisterJobs(specs); err != nil {
		return err
	}
	mgr.Start()
	log.Info("Cron Jobs started", "scheduled", len(specs))
	return nil
}
