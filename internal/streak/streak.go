// Package streak 提供连续打卡与完成率的唯一标准算法。
// 此前各调用方（看板、分析页、邮件）各自内联了互不一致的日期循环，
// 这里收敛为一份纯函数实现：输入只有打卡时间、创建时间、参照时刻与窗口，
// 无隐藏状态、无副作用，可安全并发调用。
package streak

import (
	"errors"
	"sort"
	"time"
)

// ErrInvalidWindow 在窗口天数不为正时返回，是本包唯一会拒绝的输入。
// 数据质量问题（零值时间戳、同日重复）一律静默且确定地排除，不报错。
var ErrInvalidWindow = errors.New("window must be a positive number of days")

// Milestones 是触发成就通知的固定连胜里程碑。
var Milestones = []int{7, 14, 30, 60, 100}

// Days 将打卡时间戳归一化为去重后的自然日集合，升序返回。
// 零值时间会被排除；同一天的多条记录折叠为一天（唯一性未必由存储层保证）。
func Days(times []time.Time) []time.Time {
	seen := make(map[int64]time.Time, len(times))
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		day := dayOf(t)
		seen[day.Unix()] = day
	}

	days := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	return days
}

// Current 计算截至 now 的当前连胜。
// 从今天起逐日回溯统计连续出现的打卡日；今天还没打卡时改从昨天起算，
// 当天未结束前的缺卡不会提前打断进行中的连胜。
func Current(days []time.Time, now time.Time) int {
	set := daySet(days)
	cursor := dayOf(now)

	if _, ok := set[cursor.Unix()]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	count := 0
	for {
		if _, ok := set[cursor.Unix()]; !ok {
			break
		}
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return count
}

// Best 计算历史最佳连胜：升序扫描一遍，相邻日差恰为一天时累加，出现缺口归一。
func Best(days []time.Time) int {
	normalized := Days(days)
	if len(normalized) == 0 {
		return 0
	}

	best := 1
	run := 1
	for i := 1; i < len(normalized); i++ {
		if normalized[i].Equal(normalized[i-1].AddDate(0, 0, 1)) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}

	return best
}

// Rate 计算最近 window 天内的完成率，取值范围 [0, 100]。
// 有效窗口 W 取 window 与习惯存在天数的较小值（createdAt 为零值时不设限），
// W 为 0 时返回 0 而不是除零。
func Rate(days []time.Time, createdAt, now time.Time, window int) (float64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}

	set := daySet(days)
	today := dayOf(now)

	width := window
	if !createdAt.IsZero() {
		created := dayOf(createdAt)
		since := 0
		for d := created; d.Before(today) && since < window; d = d.AddDate(0, 0, 1) {
			since++
		}
		if since < width {
			width = since
		}
	}

	if width == 0 {
		return 0, nil
	}

	completed := 0
	for i := 0; i < width; i++ {
		day := today.AddDate(0, 0, -i)
		if _, ok := set[day.Unix()]; ok {
			completed++
		}
	}

	rate := float64(completed) / float64(width) * 100
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}

	return rate, nil
}

// MilestoneReached 在连胜恰好等于某个里程碑时返回该里程碑。
// 用相等而非大于等于：成就只在抵达当天触发一次，之后的每一天不再触发。
func MilestoneReached(current int) (int, bool) {
	for _, m := range Milestones {
		if current == m {
			return m, true
		}
	}
	return 0, false
}

// dayOf 将时刻归一化到所在时区的自然日零点。
// 日界一律取时间自带的时区（服务端本地时区），全仓只用这一条规则。
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daySet(days []time.Time) map[int64]struct{} {
	set := make(map[int64]struct{}, len(days))
	for _, d := range days {
		if d.IsZero() {
			continue
		}
		set[dayOf(d).Unix()] = struct{}{}
	}
	return set
}
