// Package marketclock は韓国株式市場（Asia/Seoul）の営業時間判定を提供します。
package marketclock

import (
	"time"
)

const (
	// openHHMM と closeHHMM は両端を含む取引時間帯です（HHMM 形式）。
	openHHMM  = 900
	closeHHMM = 1600

	// DateLayout はスナップショットの日付キーの形式です。
	DateLayout = "2006-01-02"
)

// seoul is resolved once; a fixed +09:00 zone is used when tzdata is unavailable (Korea has no DST).
var seoul = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Location returns the market time zone.
func Location() *time.Location {
	return seoul
}

// IsMarketOpen は now が平日かつ 09:00〜16:00（両端含む）であれば true を返します。
// 16:00 は営業中、16:01 は営業時間外です。
func IsMarketOpen(now time.Time) bool {
	local := now.In(seoul)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hhmm := local.Hour()*100 + local.Minute()
	return hhmm >= openHHMM && hhmm <= closeHHMM
}

// Today は now のソウル時間での日付を YYYY-MM-DD で返します。
func Today(now time.Time) string {
	return now.In(seoul).Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
