package usage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/georgesolomos/eiep/internal/eiep"
	"github.com/georgesolomos/eiep/internal/util"
)

// Months with fewer days of readings than this are left out of the averages.
const MinDaysPerMonth = 14

var ErrInsufficientData = errors.New("not enough readings for a monthly average")

// Reading is the part of a half-hourly detail record the calculator needs.
type Reading interface {
	IcpIdentifier() string
	Date() time.Time
	ActiveEnergy() decimal.NullDecimal
	FlowDirection() eiep.FlowDirection
}

type Consumption struct {
	ICP string
	// Average extracted energy over every month with enough readings
	AverageMonthly decimal.Decimal
	// Indexed with January being 0. A month with no usable data is zero and absent from Months.
	AveragePerMonth []decimal.Decimal
	Months          []time.Month
}

// Calculator tallies extracted active energy per ICP per day. Injected energy and null
// readings are skipped.
type Calculator struct {
	logger   *slog.Logger
	daily    map[string]map[time.Time]decimal.Decimal
	readings map[string]int
}

func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		logger:   logger,
		daily:    make(map[string]map[time.Time]decimal.Decimal),
		readings: make(map[string]int),
	}
}

func (c *Calculator) Add(r Reading) {
	energy := r.ActiveEnergy()
	if !energy.Valid || r.FlowDirection() != eiep.FlowExtract {
		return
	}
	icp := r.IcpIdentifier()
	days, ok := c.daily[icp]
	if !ok {
		days = make(map[time.Time]decimal.Decimal)
		c.daily[icp] = days
	}
	day := util.Midnight(r.Date())
	days[day] = days[day].Add(energy.Decimal)
	c.readings[icp]++
}

// ICPs returns every ICP with at least one reading, in ascending order.
func (c *Calculator) ICPs() []string {
	icps := maps.Keys(c.daily)
	slices.Sort(icps)
	return icps
}

// PrimaryICP is the ICP with the most readings. Ties go to the lowest identifier.
func (c *Calculator) PrimaryICP() (string, bool) {
	icps := c.ICPs()
	if len(icps) == 0 {
		return "", false
	}
	selected := icps[0]
	if len(icps) > 1 {
		c.logger.Warn("More than 1 ICP detected - the one with the most readings will be used")
		for _, icp := range icps {
			if c.readings[icp] > c.readings[selected] {
				selected = icp
			}
		}
		c.logger.Info(fmt.Sprintf("Using ICP %v", selected))
	}
	return selected, true
}

type month struct {
	year  int
	month time.Month
}

// Monthly averages icp's consumption per calendar month. A month with at least
// MinDaysPerMonth days of readings but not a full month is extrapolated from its daily
// average.
func (c *Calculator) Monthly(icp string) (Consumption, error) {
	result := Consumption{
		ICP:             icp,
		AverageMonthly:  decimal.Zero,
		AveragePerMonth: make([]decimal.Decimal, 12),
	}
	days, ok := c.daily[icp]
	if !ok {
		return result, fmt.Errorf("%w: no readings for ICP %s", ErrInsufficientData, icp)
	}

	totals := make(map[month]decimal.Decimal)
	counts := make(map[month]int)
	for day, energy := range days {
		m := month{year: day.Year(), month: day.Month()}
		totals[m] = totals[m].Add(energy)
		counts[m]++
	}

	monthlyTotals := make([]decimal.Decimal, 12)
	monthlyReadings := make([]int, 12)
	for m, total := range totals {
		seen := counts[m]
		if seen < MinDaysPerMonth {
			continue
		}
		inMonth := util.DaysInMonth(time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC))
		if seen < inMonth {
			dailyAvg := total.Div(decimal.NewFromInt(int64(seen)))
			total = total.Add(dailyAvg.Mul(decimal.NewFromInt(int64(inMonth - seen))))
		}
		i := int(m.month) - 1
		monthlyTotals[i] = monthlyTotals[i].Add(total)
		monthlyReadings[i]++
	}

	valid := 0
	for i, total := range monthlyTotals {
		if monthlyReadings[i] == 0 {
			continue
		}
		result.AveragePerMonth[i] = total.Div(decimal.NewFromInt(int64(monthlyReadings[i])))
		result.AverageMonthly = result.AverageMonthly.Add(result.AveragePerMonth[i])
		result.Months = append(result.Months, time.Month(i+1))
		valid++
	}
	if valid == 0 {
		return result, fmt.Errorf("%w: ICP %s has no month with %d days of readings", ErrInsufficientData, icp, MinDaysPerMonth)
	}
	result.AverageMonthly = result.AverageMonthly.Div(decimal.NewFromInt(int64(valid)))
	return result, nil
}
