package services

import (
	"strconv"
	"strings"
)

// ParseCycleScope interprets the `cycle` query value shared by the stats and
// export endpoints: "all" (or empty) selects every cycle, "YYYY-MM" selects
// one month. Anything else is a validation error, never a silent default.
func ParseCycleScope(scope string) (year, month int, all bool, err error) {
	scope = strings.TrimSpace(scope)
	if scope == "" || scope == "all" {
		return 0, 0, true, nil
	}
	bad := NewInvalidError("invalid cycle scope, expected \"all\" or YYYY-MM")
	parts := strings.Split(scope, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, false, bad
	}
	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	if errY != nil || errM != nil || year < 1 || month < 1 || month > 12 {
		return 0, 0, false, bad
	}
	return year, month, false, nil
}
