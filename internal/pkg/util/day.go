package util

import "time"

const DateLayout = time.DateOnly

// CalendarDay t 在 loc 下的日历日，以 UTC 零点表示
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseCalendarDay 解析 YYYY-MM-DD
func ParseCalendarDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DayStart 日历日在 loc 下的零点，转换为 UTC
func DayStart(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).UTC()
}

// Period 闭区间 [Start, End]，均为日历日
type Period struct {
	Start time.Time
	End   time.Time
}

// Bounds 对应的时间戳半开区间 [from, to)
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	return DayStart(p.Start, loc), DayStart(p.End.AddDate(0, 0, 1), loc)
}

// ShiftYears 起止日期各自按日历年平移
func (p Period) ShiftYears(years int) Period {
	return Period{Start: p.Start.AddDate(years, 0, 0), End: p.End.AddDate(years, 0, 0)}
}

func (p Period) String() string {
	return p.Start.Format(DateLayout) + "~" + p.End.Format(DateLayout)
}

// ComparisonPeriods 当前 [today-(days-1), today]，上一期 [today-(2days-1), today-days]，去年同期
func ComparisonPeriods(today time.Time, days int) (current, previous, previousYear Period) {
	current = Period{Start: today.AddDate(0, 0, -(days - 1)), End: today}
	previous = Period{Start: today.AddDate(0, 0, -(2*days - 1)), End: today.AddDate(0, 0, -days)}
	previousYear = current.ShiftYears(-1)
	return current, previous, previousYear
}
