package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rl1809/trade-bot/internal/core/domain"
)

var ErrUnrecognizedCommand = errors.New("unrecognized command")

const addDirective = "!add"

// ParseCommand recognizes exactly "!add <series> <amount>": the directive
// token followed by two non-negative integers, case-insensitive, surrounding
// whitespace ignored. Anything else yields ErrUnrecognizedCommand. A zero
// amount is valid.
func ParseCommand(text string) (domain.SeriesQuery, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 || !strings.EqualFold(fields[0], addDirective) {
		return domain.SeriesQuery{}, ErrUnrecognizedCommand
	}

	series, err := parseNonNegative(fields[1])
	if err != nil {
		return domain.SeriesQuery{}, ErrUnrecognizedCommand
	}

	quantity, err := parseNonNegative(fields[2])
	if err != nil {
		return domain.SeriesQuery{}, ErrUnrecognizedCommand
	}

	return domain.SeriesQuery{
		Series:   strconv.Itoa(series),
		Quantity: quantity,
	}, nil
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}
