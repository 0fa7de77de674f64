package analysis

import "strings"

// Category is a single therapy-topic label.
type Category string

const (
	CategoryAnxiety       Category = "anxiety"
	CategoryDepression    Category = "depression"
	CategoryStress        Category = "stress"
	CategoryRelationships Category = "relationships"
	CategoryWork          Category = "work"
	CategoryIdentity      Category = "identity"
	CategoryHealth        Category = "health"
	CategoryGrief         Category = "grief"
	CategoryGeneral       Category = "general"
)

// Categories lists every label Classify can return, in table order.
var Categories = []Category{
	CategoryAnxiety,
	CategoryDepression,
	CategoryStress,
	CategoryRelationships,
	CategoryWork,
	CategoryIdentity,
	CategoryHealth,
	CategoryGrief,
	CategoryGeneral,
}

type categoryKeywords struct {
	category Category
	keywords []string
}

// categoryTable is ordered: the first category with any keyword hit wins.
// Tie-break is table order, never match count or position. Work precedes
// stress so that workplace language ("stressing me out at work") lands on
// the workplace family rather than generic stress.
var categoryTable = []categoryKeywords{
	{CategoryAnxiety, []string{"anxious", "anxiety", "panic", "worry", "worried", "nervous", "on edge", "racing thoughts"}},
	{CategoryDepression, []string{"depressed", "depression", "hopeless", "empty", "numb", "no energy", "worthless", "can't get out of bed"}},
	{CategoryGrief, []string{"grief", "passed away", "died", "death", "mourning", "miss them"}},
	{CategoryRelationships, []string{"relationship", "partner", "boyfriend", "girlfriend", "husband", "wife", "friend", "family", "lonely", "breakup", "argument"}},
	{CategoryWork, []string{"work", "job", "boss", "coworker", "career", "deadline", "assignment", "presentation", "meeting"}},
	{CategoryStress, []string{"stress", "stressed", "overwhelmed", "burnout", "burned out", "pressure", "too much"}},
	{CategoryIdentity, []string{"identity", "who i am", "purpose", "self-esteem", "confidence", "direction in life"}},
	{CategoryHealth, []string{"sleep", "insomnia", "appetite", "headache", "pain", "sick", "illness"}},
}

// Classify maps text to exactly one category via the ordered keyword table.
// Absence of any keyword yields CategoryGeneral.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, row := range categoryTable {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.category
			}
		}
	}
	return CategoryGeneral
}
