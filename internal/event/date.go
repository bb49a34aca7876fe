package event

import "time"

// DateLayout is the format session dates are stored in.
const DateLayout = "2006-01-02"

// WeekendStart is the weekday a "this weekend" search targets.
const WeekendStart = time.Friday

// Choice is one of the date options offered after a search command.
type Choice string

const (
	ChoiceToday    Choice = "today"
	ChoiceTomorrow Choice = "tomorrow"
	ChoiceWeekend  Choice = "weekend"
)

// Choices lists the options in the order they are offered to the user.
var Choices = []Choice{ChoiceToday, ChoiceTomorrow, ChoiceWeekend}

// Label is the button label shown for the choice.
func (c Choice) Label() string {
	switch c {
	case ChoiceToday:
		return "Today"
	case ChoiceTomorrow:
		return "Tomorrow"
	case ChoiceWeekend:
		return "This weekend"
	default:
		return string(c)
	}
}

// Command is the text the button sends back when tapped.
func (c Choice) Command() string {
	switch c {
	case ChoiceToday:
		return "events today"
	case ChoiceTomorrow:
		return "events tomorrow"
	case ChoiceWeekend:
		return "events this weekend"
	default:
		return ""
	}
}

// ParseChoice maps an incoming text message to a date choice.
// The match is exact, the same text the buttons send.
func ParseChoice(text string) (Choice, bool) {
	for _, c := range Choices {
		if text == c.Command() {
			return c, true
		}
	}
	return "", false
}

// Date resolves the choice to a concrete date relative to now.
func (c Choice) Date(now time.Time) time.Time {
	switch c {
	case ChoiceTomorrow:
		return now.AddDate(0, 0, 1)
	case ChoiceWeekend:
		return NextWeekday(now, WeekendStart)
	default:
		return now
	}
}

// DateString resolves the choice and formats it with DateLayout.
func (c Choice) DateString(now time.Time) string {
	return c.Date(now).Format(DateLayout)
}

// NextWeekday returns the first day strictly after now that falls on target.
// When now is already the target weekday the result is one week later.
func NextWeekday(now time.Time, target time.Weekday) time.Time {
	days := int(target) - int(now.Weekday())
	if days <= 0 {
		days += 7
	}
	return now.AddDate(0, 0, days)
}

// ValidDate reports whether s is a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
