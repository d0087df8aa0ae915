package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"go.uber.org/zap"

	"github.com/potonglab/barbershop/internal/domain"
	"github.com/potonglab/barbershop/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const staleCartTTL = 30 * 24 * time.Hour

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithParser(cronParser), cron.WithLocation(loc))

	if _, err := a.sched.AddFunc("@every 60s", a.sampleSystemMetrics); err != nil {
		zap.L().Error("failed to schedule metrics job", zap.Error(err))
	}
	if _, err := a.sched.AddFunc("@daily", a.purgeStaleCartRows); err != nil {
		zap.L().Error("failed to schedule cart purge job", zap.Error(err))
	}
}

func (a *Application) StartScheduler(ctx context.Context) {
	a.sched.Start()
	<-ctx.Done()
	stopCtx := a.sched.Stop()
	<-stopCtx.Done()
}

func (a *Application) sampleSystemMetrics() {
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		metrics.Record(metrics.MetricSystemCPU, percents[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		metrics.Record(metrics.MetricSystemMem, vm.UsedPercent)
	}
}

// purgeStaleCartRows drops cart rows nobody touched within the TTL so
// abandoned carts do not pin stock expectations forever.
func (a *Application) purgeStaleCartRows() {
	cutoff := time.Now().Add(-staleCartTTL)
	res := a.gormDB.Where("updated_at < ?", cutoff).Delete(&domain.CartItem{})
	if res.Error != nil {
		zap.L().Error("stale cart purge failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("purged stale cart rows", zap.Int64("count", res.RowsAffected))
	}
}
