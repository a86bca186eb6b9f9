package game

import (
	"fmt"
	"time"
)

// Date counts days since 1 January of year 0.
type Date int32

type Year int32

const (
	OriginalBaseYear = 1920
	OriginalMaxYear  = 2090
	// DaysTillOriginalBaseYear is the date of 1 January 1920.
	DaysTillOriginalBaseYear = 365*OriginalBaseYear + OriginalBaseYear/4 - OriginalBaseYear/100 + OriginalBaseYear/400

	DayTicks = 74
)

var epoch = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Unix() / 86400

func ConvertYMDToDate(y Year, m time.Month, d int) Date {
	return Date(time.Date(int(y), m, d, 0, 0, 0, 0, time.UTC).Unix()/86400 - epoch)
}

func (d Date) YMD() (Year, time.Month, int) {
	t := time.Unix((int64(d)+epoch)*86400, 0).UTC()
	return Year(t.Year()), t.Month(), t.Day()
}

func (d Date) Year() Year {
	y, _, _ := d.YMD()
	return y
}

func (d Date) String() string {
	y, m, day := d.YMD()
	return fmt.Sprintf("%04d-%02d-%02d", y, m, day)
}
