package app

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedClearExpireData()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(cpuuse[0]*100))
	}

	meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("viewguard_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("viewguard_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedClearExpireData applies the retention settings: audit rows age out and
// resolved service messages move to archived so list views stay lean.
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	logDays := a.GetSettingsInt64Value("portal", "OprLogRetentionDays")
	if logDays == 0 {
		logDays = 365
	}
	a.gormDB.
		Where("opt_time < ?", time.Now().Add(-time.Hour*24*time.Duration(logDays))).
		Delete(&domain.SysOprLog{})

	msgDays := a.GetSettingsInt64Value("portal", "MessageRetentionDays")
	if msgDays == 0 {
		msgDays = 30
	}
	res := a.gormDB.Model(&domain.Message{}).
		Where("status = ? AND updated_at < ?", "resolved", time.Now().Add(-time.Hour*24*time.Duration(msgDays))).
		Updates(map[string]interface{}{
			"status":     "archived",
			"updated_at": time.Now(),
		})
	if res.RowsAffected > 0 {
		zap.S().Infof("auto-archived %d resolved messages", res.RowsAffected)
	}
}
