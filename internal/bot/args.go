package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

var errUsage = errors.New("usage")

// args: позиционные аргументы команды и опции вида key=value (date, kind, order).
type args struct {
	pos  []string
	opts map[string]string
}

var optionKeys = map[string]bool{"date": true, "kind": true, "order": true}

func parseArgs(s string) args {
	a := args{opts: map[string]string{}}
	for _, f := range strings.Fields(s) {
		if k, v, ok := strings.Cut(f, "="); ok && optionKeys[strings.ToLower(k)] {
			a.opts[strings.ToLower(k)] = v
			continue
		}
		a.pos = append(a.pos, f)
	}
	return a
}

// rest склеивает позиционные аргументы начиная с i (заметки).
func (a args) rest(i int) string {
	if i >= len(a.pos) {
		return ""
	}
	return strings.Join(a.pos[i:], " ")
}

func (a args) date() (inventory.Date, error) {
	s, ok := a.opts["date"]
	if !ok {
		return inventory.Date{}, nil
	}
	return inventory.ParseDate(s)
}

// parseDecimal принимает и запятую, и точку: "12,5" и "12.5".
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number: %q", s)
	}
	return d, nil
}

func parseCount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return n, nil
}
