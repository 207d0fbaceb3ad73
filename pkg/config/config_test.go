package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load失败: %v", err)
	}

	// 信号策略的关键默认值
	if cfg.Signal.ScoreThreshold != 3 {
		t.Errorf("score_threshold = %d, 期望 3", cfg.Signal.ScoreThreshold)
	}
	if cfg.Signal.CooldownHours != 4 {
		t.Errorf("cooldown_hours = %d, 期望 4", cfg.Signal.CooldownHours)
	}
	if cfg.Signal.MinVolumeMultiplier != 0.8 {
		t.Errorf("min_volume_multiplier = %f, 期望 0.8", cfg.Signal.MinVolumeMultiplier)
	}
	if cfg.Signal.PaceDelay != 800*time.Millisecond {
		t.Errorf("pace_delay = %v, 期望 800ms", cfg.Signal.PaceDelay)
	}
	if cfg.Signal.Timeframe != "1h" || cfg.Signal.OHLCVLimit != 200 {
		t.Errorf("K线参数 = %s/%d, 期望 1h/200", cfg.Signal.Timeframe, cfg.Signal.OHLCVLimit)
	}
	if len(cfg.Signal.Symbols) == 0 {
		t.Error("默认交易对列表为空")
	}

	if cfg.Report.DailyHourUTC != 20 || cfg.Report.TopN != 8 {
		t.Errorf("日报参数 = %d/%d, 期望 20/8", cfg.Report.DailyHourUTC, cfg.Report.TopN)
	}

	if cfg.State.Backend != "file" {
		t.Errorf("state.backend = %q, 期望 file", cfg.State.Backend)
	}
	if cfg.Network.Timeout != 15*time.Second {
		t.Errorf("network.timeout = %v, 期望 15s", cfg.Network.Timeout)
	}
}
