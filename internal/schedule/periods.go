package schedule

import (
	"sort"

	"kmacal/internal/apperr"
	"kmacal/internal/model"
)

// PeriodTable maps ordinal class periods to wall-clock spans.
type PeriodTable map[int]model.ClockRange

// DefaultPeriods is the standard twelve-period day, with a lunch gap
// between periods 6 and 7.
func DefaultPeriods() PeriodTable {
	return PeriodTable{
		1:  {Start: model.Clock{Hour: 7, Minute: 0}, End: model.Clock{Hour: 7, Minute: 45}},
		2:  {Start: model.Clock{Hour: 7, Minute: 50}, End: model.Clock{Hour: 8, Minute: 35}},
		3:  {Start: model.Clock{Hour: 8, Minute: 40}, End: model.Clock{Hour: 9, Minute: 25}},
		4:  {Start: model.Clock{Hour: 9, Minute: 35}, End: model.Clock{Hour: 10, Minute: 20}},
		5:  {Start: model.Clock{Hour: 10, Minute: 25}, End: model.Clock{Hour: 11, Minute: 10}},
		6:  {Start: model.Clock{Hour: 11, Minute: 15}, End: model.Clock{Hour: 12, Minute: 0}},
		7:  {Start: model.Clock{Hour: 13, Minute: 0}, End: model.Clock{Hour: 13, Minute: 45}},
		8:  {Start: model.Clock{Hour: 13, Minute: 50}, End: model.Clock{Hour: 14, Minute: 35}},
		9:  {Start: model.Clock{Hour: 14, Minute: 40}, End: model.Clock{Hour: 15, Minute: 25}},
		10: {Start: model.Clock{Hour: 15, Minute: 35}, End: model.Clock{Hour: 16, Minute: 20}},
		11: {Start: model.Clock{Hour: 16, Minute: 25}, End: model.Clock{Hour: 17, Minute: 10}},
		12: {Start: model.Clock{Hour: 17, Minute: 15}, End: model.Clock{Hour: 18, Minute: 0}},
	}
}

// Validate checks that every entry has start < end and that periods do not
// run backwards in numeric order.
func (t PeriodTable) Validate() error {
	if len(t) == 0 {
		return apperr.Configf("period table is empty")
	}
	nums := t.Numbers()
	for i, n := range nums {
		r := t[n]
		if !r.Start.Before(r.End) {
			return apperr.Configf("period %d: start %s is not before end %s", n, r.Start, r.End)
		}
		if i > 0 {
			prev := t[nums[i-1]]
			if r.Start.Before(prev.End) {
				return apperr.Configf("period %d starts at %s, before period %d ends at %s",
					n, r.Start, nums[i-1], prev.End)
			}
		}
	}
	return nil
}

// Numbers returns the defined period numbers in ascending order.
func (t PeriodTable) Numbers() []int {
	nums := make([]int, 0, len(t))
	for n := range t {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Lookup returns the span of one period.
func (t PeriodTable) Lookup(n int) (model.ClockRange, error) {
	r, ok := t[n]
	if !ok {
		return model.ClockRange{}, apperr.Configf("period %d has no clock mapping", n)
	}
	return r, nil
}

// Span returns the range from the start of the lowest period to the end of
// the highest. Periods in between are assumed contiguous.
func (t PeriodTable) Span(periods []int) (model.ClockRange, error) {
	if len(periods) == 0 {
		return model.ClockRange{}, apperr.Parsef("slot has no periods")
	}
	lo, hi := periods[0], periods[0]
	for _, p := range periods[1:] {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	first, err := t.Lookup(lo)
	if err != nil {
		return model.ClockRange{}, err
	}
	last, err := t.Lookup(hi)
	if err != nil {
		return model.ClockRange{}, err
	}
	return model.ClockRange{Start: first.Start, End: last.End}, nil
}

