package sweeper

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseRunAt 解析 "HH:MM" 形式的每日触发时刻。
func parseRunAt(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("sweeper: run_at %q is not in HH:MM form", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("sweeper: run_at %q has invalid hour", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("sweeper: run_at %q has invalid minute", value)
	}
	return hour, minute, nil
}

// nextRunAfter 计算 now 之后最近的一次触发时刻。now 当天的触发点已过时
// 顺延到次日同一时刻，跨夏令时由 time.Date 的规范化兜底。
func nextRunAfter(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
