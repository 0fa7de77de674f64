package analysis

import (
	"reflect"
	"testing"
)

func TestExtractAllEntityKinds(t *testing.T) {
	got := Extract("Sarah has been really stressing me out at work with the upcoming assignment that is due next Monday.")

	if !contains(got.People, "Sarah") {
		t.Fatalf("People = %v, want to include %q", got.People, "Sarah")
	}
	if !contains(got.Events, "assignment") {
		t.Fatalf("Events = %v, want to include %q", got.Events, "assignment")
	}
	if !contains(got.Dates, "next Monday") {
		t.Fatalf("Dates = %v, want to include %q", got.Dates, "next Monday")
	}
	if !contains(got.Feelings, "stress") {
		t.Fatalf("Feelings = %v, want to include %q", got.Feelings, "stress")
	}
	if !contains(got.Locations, "work") {
		t.Fatalf("Locations = %v, want to include %q", got.Locations, "work")
	}
}

func TestExtractEmptyInput(t *testing.T) {
	got := Extract("")
	if !got.IsEmpty() {
		t.Fatalf("Extract(\"\") = %+v, want empty", got)
	}
}

func TestExtractStoplistFiltersSentenceStarters(t *testing.T) {
	got := Extract("Today I talked with Marco. The weather was fine.")
	if !reflect.DeepEqual(got.People, []string{"Marco"}) {
		t.Fatalf("People = %v, want [Marco]", got.People)
	}
}

func TestExtractWeekdayNamesAreNotPeople(t *testing.T) {
	got := Extract("On Monday I saw Elena")
	if contains(got.People, "Monday") {
		t.Fatalf("People = %v, weekday leaked through stoplist", got.People)
	}
	if !contains(got.People, "Elena") {
		t.Fatalf("People = %v, want to include Elena", got.People)
	}
}

func TestExtractRelativeAndNamedDates(t *testing.T) {
	got := Extract("I have an exam tomorrow and a meeting this friday")
	if len(got.Dates) != 2 {
		t.Fatalf("Dates = %v, want 2 matches", got.Dates)
	}
	if !contains(got.Events, "exam") || !contains(got.Events, "meeting") {
		t.Fatalf("Events = %v, want exam and meeting", got.Events)
	}
}

func TestExtractDayOfMonthDate(t *testing.T) {
	got := Extract("the interview is on the 14th of March")
	if len(got.Dates) != 1 {
		t.Fatalf("Dates = %v, want one day-of-month match", got.Dates)
	}
}

func TestExtractLocationCapturesNounOnly(t *testing.T) {
	got := Extract("things have been rough at home lately")
	if !reflect.DeepEqual(got.Locations, []string{"home"}) {
		t.Fatalf("Locations = %v, want [home]", got.Locations)
	}
}

func TestExtractPreservesDuplicates(t *testing.T) {
	got := Extract("Anna called Anna twice")
	if len(got.People) != 2 {
		t.Fatalf("People = %v, duplicates should be preserved", got.People)
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
