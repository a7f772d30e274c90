package handlers

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// applyMonthFilter narrows a query to one month (or a whole year when no
// month is given) on the named date column.
func applyMonthFilter(query *gorm.DB, column, monthValue, yearValue string) (*gorm.DB, error) {
	if monthValue == "" && yearValue == "" {
		return query, nil
	}
	if yearValue == "" {
		return nil, errors.New("year is required with month")
	}

	year, err := parseYear(yearValue)
	if err != nil {
		return nil, errors.New("invalid year")
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	if monthValue != "" {
		month, err := parseMonth(monthValue)
		if err != nil {
			return nil, errors.New("invalid month")
		}
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}

	return query.Where(column+" >= ? AND "+column+" < ?", start, end), nil
}
